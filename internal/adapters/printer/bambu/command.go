package bambu

import "fmt"

// PrintCommand is the project_file request understood by the printer's
// local MQTT interface.
type PrintCommand struct {
	Print PrintParams `json:"print"`
}

type PrintParams struct {
	SequenceID    string `json:"sequence_id"`
	Command       string `json:"command"`
	Param         string `json:"param"`
	SubtaskName   string `json:"subtask_name"`
	URL           string `json:"url"`
	BedType       string `json:"bed_type"`
	Timelapse     bool   `json:"timelapse"`
	BedLeveling   bool   `json:"bed_leveling"`
	FlowCali      bool   `json:"flow_cali"`
	VibrationCali bool   `json:"vibration_cali"`
	LayerInspect  bool   `json:"layer_inspect"`
	UseAMS        bool   `json:"use_ams"`
}

// NewPrintCommand starts job from the printer's SD card using the given
// gcode path inside the project archive.
func NewPrintCommand(job, gcodeFile string) PrintCommand {
	return PrintCommand{Print: PrintParams{
		SequenceID:  "0",
		Command:     "project_file",
		Param:       gcodeFile,
		SubtaskName: job,
		URL:         fmt.Sprintf("file:///sdcard/%s.gcode.3mf", job),
		BedType:     "auto",
		BedLeveling: true,
	}}
}

func requestTopic(serial string) string {
	return fmt.Sprintf("device/%s/request", serial)
}
