package backup

import "fmt"

// Phase identifies a restore milestone.
type Phase int

const (
	PhaseStarted Phase = iota
	PhaseValidationFailed
	PhaseDeleting
	PhaseRecreating
	PhaseCommitted
	PhaseExtractingAssets
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseStarted:
		return "started"
	case PhaseValidationFailed:
		return "validation_failed"
	case PhaseDeleting:
		return "deleting"
	case PhaseRecreating:
		return "recreating"
	case PhaseCommitted:
		return "committed"
	case PhaseExtractingAssets:
		return "extracting_assets"
	case PhaseDone:
		return "done"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Entity kinds reported with PhaseDeleting and PhaseRecreating.
const (
	EntityIngredients = "ingredients"
	EntityRecipes     = "recipes"
	EntityCategories  = "categories"
	EntityUsers       = "users"
	EntityImages      = "images"
)

// Event is one progress notification. Entity and Count are set when the
// phase has them.
type Event struct {
	Phase   Phase
	Entity  string
	Count   int
	Message string
}

// Observer receives restore events synchronously, in program order. A slow
// observer slows the restore down.
type Observer interface {
	OnEvent(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) OnEvent(e Event) { f(e) }

// ImageProgressStep is how often extraction reports a running count.
const ImageProgressStep = 10

type nopObserver struct{}

func (nopObserver) OnEvent(Event) {}

func orNop(o Observer) Observer {
	if o == nil {
		return nopObserver{}
	}
	return o
}
