// services/output/internal/consts/consts.go
package consts

// Topic tokens
const (
	TokConfig  = "config"
	TokOutput  = "output"
	TokState   = "state"
	TokStatus  = "status"
	TokControl = "control"
	TokFrame   = "frame"
)

// Control verbs
const (
	CtrlSet        = "set"
	CtrlGet        = "get"
	CtrlStatus     = "status"
	CtrlOptions    = "options"
	CtrlPortConfig = "portconfig"
	CtrlPause      = "pause"
	CtrlResume     = "resume"
	CtrlSave       = "save"
)
