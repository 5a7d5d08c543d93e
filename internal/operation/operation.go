package operation

// Status reports where a poll-driven operation is in its lifecycle.
type Status int

const (
	StatusNone Status = iota
	StatusProcessing
	StatusSucceed
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusNone:
		return "none"
	case StatusProcessing:
		return "processing"
	case StatusSucceed:
		return "succeed"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Operation is the common contract for every poll-driven sub-operation in
// the update pipeline: the deserializer, the verifier strategies, the
// precheck and fetch stages and the coordinator itself. Update performs a
// bounded amount of work and never blocks; callers poll until IsDone.
type Operation interface {
	Start()
	Update()
	IsDone() bool
	Status() Status
	Progress() float64
	Err() error
}
