package dataset

import "errors"

// ErrUnlabeledRecording marks a recording without an annotation or without an alc entry.
// It is never fatal: the recording is skipped and reported.
var ErrUnlabeledRecording = errors.New("no label found")
