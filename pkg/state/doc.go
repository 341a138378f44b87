// Package state persists what the phase watcher last observed, so a restart
// can tell missed batches apart from a clock that moved backwards.
//
//	repo := state.NewFileRepository("/var/lib/batchclock")
//	s, err := repo.Load(ctx)
//	if err != nil {
//	    return err
//	}
//	s.Observe(batch.CollectionStarted, id, now)
//	if err := repo.Save(ctx, s); err != nil {
//	    return err
//	}
//
// Batch ids are stored as bare JSON integers.
package state
