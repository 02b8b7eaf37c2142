package flow

// Metrics hooks. Defaults are no-ops so the package stays usable
// without a metrics backend wired in.

var transitionRecorder = func(from, to string) {}

// RegisterTransitionRecorder allows external packages to observe step transitions.
func RegisterTransitionRecorder(recorder func(from, to string)) {
	if recorder == nil {
		transitionRecorder = func(string, string) {}
		return
	}
	transitionRecorder = recorder
}

var orderRecorder = func(kind string) {}

// RegisterOrderRecorder allows external packages to observe submitted orders.
func RegisterOrderRecorder(recorder func(kind string)) {
	if recorder == nil {
		orderRecorder = func(string) {}
		return
	}
	orderRecorder = recorder
}

var decisionRecorder = func(outcome string) {}

// RegisterDecisionRecorder allows external packages to observe operator decisions.
func RegisterDecisionRecorder(recorder func(outcome string)) {
	if recorder == nil {
		decisionRecorder = func(string) {}
		return
	}
	decisionRecorder = recorder
}
