// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/pdiddy/geo-converter/internal/convert"
	"github.com/pdiddy/geo-converter/internal/coords"
)

// previewRows bounds the table printed before column mapping.
const previewRows = 5

// askColumn prompts for one column among headers. Replaced in tests.
var askColumn = func(message string, headers []string, def string) (string, error) {
	var answer string
	prompt := &survey.Select{
		Message: message,
		Options: headers,
	}
	if def != "" {
		prompt.Default = def
	}
	err := survey.AskOne(prompt, &answer, survey.WithValidator(survey.Required))
	return answer, err
}

var coordsCmd = &cobra.Command{
	Use:   "coords [file]",
	Short: "Convert coordinate columns between DD, DMS and UTM",
	Long: `Coords reads a CSV table and adds converted coordinate columns to every
row. DD input is found by headers containing "lat" and "lon"; UTM input by
"easting", "northing", "zone" and "hemisphere". DMS input needs the latitude
and longitude columns: pass --lat-col and --lon-col or pick them when
prompted. Rows that cannot be converted get an "error" column.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCoords,
}

func init() {
	coordsCmd.Flags().String("from", "dd", "input system: dd, dms or utm")
	coordsCmd.Flags().String("to", "utm", "output system: dd, dms or utm")
	coordsCmd.Flags().String("lat-col", "", "DMS latitude column")
	coordsCmd.Flags().String("lon-col", "", "DMS longitude column")
	coordsCmd.Flags().Bool("prompt", true, "ask for missing DMS columns interactively")
	addRunFlags(coordsCmd, true)

	rootCmd.AddCommand(coordsCmd)
}

func runCoords(cmd *cobra.Command, args []string) error {
	fromFlag, _ := cmd.Flags().GetString("from")
	toFlag, _ := cmd.Flags().GetString("to")
	from, err := coords.ParseSystem(fromFlag)
	if err != nil {
		return err
	}
	to, err := coords.ParseSystem(toFlag)
	if err != nil {
		return err
	}
	if from == to {
		return coords.ErrSameSystem
	}

	cfg := loadConfig()
	text, _ := cmd.Flags().GetString("text")
	in, err := readInputs(appFs, args, text, cmd.InOrStdin())
	if err != nil {
		return err
	}
	conv := newConverter(cfg)

	var m convert.Machine
	session := convert.CoordinatesSession{From: from, To: to}
	session.Mapping.Latitude, _ = cmd.Flags().GetString("lat-col")
	session.Mapping.Longitude, _ = cmd.Flags().GetString("lon-col")

	if from == coords.DMS && !session.Mapping.Complete() {
		mapping, err := mapColumns(cmd, conv, in, session.Mapping, &m)
		if err != nil {
			return err
		}
		session.Mapping = mapping
	}
	return execute(cmd, cfg, conv, session, in, &m)
}

// mapColumns previews the input and completes the DMS column mapping,
// leaving m in the preview state.
func mapColumns(cmd *cobra.Command, conv *convert.Converter, in convert.Inputs, given coords.ColumnMapping, m *convert.Machine) (coords.ColumnMapping, error) {
	if err := m.Start(); err != nil {
		return given, err
	}
	p, err := conv.Preview(in)
	if err != nil {
		_ = m.Transition(convert.StateError)
		return given, err
	}
	if err := m.Transition(convert.StatePreview); err != nil {
		return given, err
	}

	mapping := p.Mapping
	if given.Latitude != "" {
		mapping.Latitude = given.Latitude
	}
	if given.Longitude != "" {
		mapping.Longitude = given.Longitude
	}

	prompt, _ := cmd.Flags().GetBool("prompt")
	if !prompt {
		if !mapping.Complete() {
			return mapping, coords.ErrMappingRequired
		}
		return mapping, nil
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, convert.PreviewMessage)
	printTable(out, p, previewRows)

	if given.Latitude == "" {
		if mapping.Latitude, err = askColumn("Latitude column", p.Table.Headers, mapping.Latitude); err != nil {
			return mapping, err
		}
	}
	if given.Longitude == "" {
		if mapping.Longitude, err = askColumn("Longitude column", p.Table.Headers, mapping.Longitude); err != nil {
			return mapping, err
		}
	}
	return mapping, nil
}
