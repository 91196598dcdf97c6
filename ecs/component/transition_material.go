package component

import "github.com/milk9111/masktransition/ecs/asset"

// TransitionMaterial feeds the transition shader: the mask drives the shape of
// the wipe and PreviousFrame is the captured screen being wiped away.
// StartTime is in wrapped clock seconds, Duration in seconds.
type TransitionMaterial struct {
	Mask          asset.Handle
	PreviousFrame asset.Handle
	StartTime     float32
	Duration      float32
}

var TransitionMaterialComponent = NewComponent[TransitionMaterial]()
