package build

import "errors"

var (
	ErrClean         = errors.New("work directory clean failed")
	ErrStage         = errors.New("profile staging failed")
	ErrBuilderFailed = errors.New("image builder failed")
	ErrNoArtifact    = errors.New("no image produced")
	ErrFinalize      = errors.New("output finalization failed")
)
