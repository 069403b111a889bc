// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"io"

	"go.yaml.in/yaml/v3"
)

// File statuses in a Report.
const (
	StatusConverted = "converted"
	StatusFailed    = "failed"
)

// Report is the YAML summary of a run.
type Report struct {
	Mode     Mode         `yaml:"mode"`
	Status   string       `yaml:"status"`
	Message  string       `yaml:"message"`
	Rows     int          `yaml:"rows"`
	Artifact string       `yaml:"artifact,omitempty"`
	Files    []FileReport `yaml:"files,omitempty"`
}

// FileReport is the outcome of one input file.
type FileReport struct {
	Name   string `yaml:"name"`
	Status string `yaml:"status"`
	Rows   int    `yaml:"rows"`
	Error  string `yaml:"error,omitempty"`
}

// Report summarizes a successful run. artifact is the written file name.
func (r *Result) Report(artifact string) Report {
	rep := Report{
		Mode:     r.Mode,
		Status:   string(StateSuccess),
		Message:  r.Message(),
		Rows:     r.Rows,
		Artifact: artifact,
	}
	for _, o := range r.Outcomes {
		fr := FileReport{Name: o.Name, Status: StatusConverted, Rows: o.Rows}
		if o.Err != nil {
			fr.Status, fr.Error = StatusFailed, o.Err.Error()
		}
		rep.Files = append(rep.Files, fr)
	}
	return rep
}

// FailureReport summarizes a run that returned err.
func FailureReport(mode Mode, err error) Report {
	return Report{Mode: mode, Status: string(StateError), Message: err.Error()}
}

// WriteReport encodes rep as YAML to w.
func WriteReport(w io.Writer, rep Report) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(rep)
}
