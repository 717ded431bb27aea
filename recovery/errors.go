package recovery

import "fmt"

// NodeFailure records one node's failure during a fan-out operation.
type NodeFailure struct {
	NodeIndex int
	Error     string
}

// MpcUploadFailed is raised when an Upload does not reach k+m successes.
type MpcUploadFailed struct {
	Success  int
	Required int
	Failures []NodeFailure
}

func (e *MpcUploadFailed) Error() string {
	return fmt.Sprintf("recovery: upload succeeded on %d/%d required nodes", e.Success, e.Required)
}

// MpcNotEnoughShares is raised when a Download does not recover k shares.
type MpcNotEnoughShares struct {
	Obtained int
	Required int
	Failures []NodeFailure
}

func (e *MpcNotEnoughShares) Error() string {
	return fmt.Sprintf("recovery: obtained %d/%d required shares", e.Obtained, e.Required)
}
