package batch

// Version is the current version of the batch module.
const Version = "1.0.0"
