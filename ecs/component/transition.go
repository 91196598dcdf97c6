package component

// TransitionState is the phase of the screen transition machine.
type TransitionState int

const (
	TransitionIdle TransitionState = iota
	TransitionTakingScreenshot
	TransitionLoadingMaskAndScreenshot
	TransitionTransitioning
)

func (s TransitionState) String() string {
	switch s {
	case TransitionIdle:
		return "Idle"
	case TransitionTakingScreenshot:
		return "TakingScreenshot"
	case TransitionLoadingMaskAndScreenshot:
		return "LoadingMaskAndScreenshot"
	case TransitionTransitioning:
		return "Transitioning"
	default:
		return "TransitionState(?)"
	}
}
