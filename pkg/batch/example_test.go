package batch_test

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/bft-labs/batchclock/pkg/batch"
)

func ExampleCurrent() {
	now := time.Date(2024, 3, 9, 16, 0, 0, 0, time.UTC)
	id, err := batch.Current(now)
	if err != nil {
		panic(err)
	}
	fmt.Println(id)
	fmt.Println(id.OrderCollectionStartTime().Format(time.RFC3339))
	fmt.Println(id.SolveStartTime().Format(time.RFC3339))
	fmt.Println(id.SolveEndTime().Format(time.RFC3339))
	// Output:
	// 5700000
	// 2024-03-09T16:00:00Z
	// 2024-03-09T16:05:00Z
	// 2024-03-09T16:09:00Z
}

func ExampleCurrentlyBeingSolved() {
	id, err := batch.CurrentlyBeingSolved(batch.Epoch.Add(301 * time.Second))
	if err != nil {
		panic(err)
	}
	fmt.Println(id)
	// Output: 0
}

func ExampleID_MarshalJSON() {
	b, _ := json.Marshal(struct {
		Batch batch.ID `json:"batch"`
	}{Batch: 5699712})
	fmt.Println(string(b))
	// Output: {"batch":5699712}
}
