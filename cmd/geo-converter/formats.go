// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/geo-converter/internal/convert"
	"github.com/pdiddy/geo-converter/internal/export"
)

var kmlCmd = &cobra.Command{
	Use:   "kml [files...]",
	Short: "Convert KML or KMZ placemarks to CSV",
	Long: `Kml reads placemarks from KML documents or KMZ archives. Each placemark
becomes one row with its name, coordinates and the key/value pairs of its
description table. With --ai the document text is sent to the cleanup
service instead (pasted text is then accepted with --text).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		useAI, _ := cmd.Flags().GetBool("ai")
		out, err := pointFormat(cmd)
		if err != nil {
			return err
		}
		return runSession(cmd, args, convert.KMLSession{UseAI: useAI, Output: out})
	},
}

var gpxCmd = &cobra.Command{
	Use:   "gpx [files...]",
	Short: "Convert GPX waypoints, track points and route points to CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := pointFormat(cmd)
		if err != nil {
			return err
		}
		return runSession(cmd, args, convert.GPXSession{Output: out})
	},
}

var geojsonCmd = &cobra.Command{
	Use:   "geojson [files...]",
	Short: "Convert a GeoJSON FeatureCollection to CSV, GPX, KML or KMZ",
	Long: `Geojson converts every feature of a FeatureCollection. Labels come from
the --name-field and --description-field properties, falling back to "name"
and "description". --elevation-field adds a numeric property as the third
coordinate of KML output and as <ele> in GPX output.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, _ := cmd.Flags().GetString("format")
		format, err := convert.ParseFormat(f)
		if err != nil {
			return err
		}
		if format == convert.FormatGeoJSON {
			return fmt.Errorf("output format %q is not supported for GeoJSON input", f)
		}
		name, _ := cmd.Flags().GetString("name-field")
		desc, _ := cmd.Flags().GetString("description-field")
		ele, _ := cmd.Flags().GetString("elevation-field")
		return runSession(cmd, args, convert.GeoJSONSession{
			Fields: export.FieldOptions{Name: name, Description: desc, Elevation: ele},
			Format: format,
		})
	},
}

var jsonCmd = &cobra.Command{
	Use:   "json [files...]",
	Short: "Flatten JSON objects to CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSession(cmd, args, convert.JSONSession{})
	},
}

var xlsxCmd = &cobra.Command{
	Use:   "xlsx [files...]",
	Short: "Convert every non-empty worksheet to CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return fmt.Errorf("provide one or more workbook files")
		}
		return runSession(cmd, args, convert.XLSXSession{})
	},
}

var pdfCmd = &cobra.Command{
	Use:   "pdf [files...]",
	Short: "Extract text and table rows from PDF documents",
	Long: `Pdf sends each document to the extraction service and writes its table
rows as CSV, or its text when no table was found. Set ai.pdf_backend to
"text" to read the embedded text layer locally instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return fmt.Errorf("provide one or more PDF files")
		}
		return runSession(cmd, args, convert.PDFSession{})
	},
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup [files...]",
	Short: "Turn messy text into CSV with the cleanup service",
	RunE: func(cmd *cobra.Command, args []string) error {
		instructions, _ := cmd.Flags().GetString("instructions")
		return runSession(cmd, args, convert.CleanupSession{Instructions: instructions})
	},
}

func init() {
	kmlCmd.Flags().Bool("ai", false, "parse with the cleanup service instead of the structural parser")
	kmlCmd.Flags().String("format", "csv", "output format: csv or geojson")
	addRunFlags(kmlCmd, true)

	gpxCmd.Flags().String("format", "csv", "output format: csv or geojson")
	addRunFlags(gpxCmd, false)

	geojsonCmd.Flags().String("format", "csv", "output format: csv, gpx, kml or kmz")
	geojsonCmd.Flags().String("name-field", "", "property used as the feature name")
	geojsonCmd.Flags().String("description-field", "", "property used as the feature description")
	geojsonCmd.Flags().String("elevation-field", "", "numeric property used as elevation")
	addRunFlags(geojsonCmd, true)

	addRunFlags(jsonCmd, true)
	addRunFlags(xlsxCmd, false)
	addRunFlags(pdfCmd, false)

	cleanupCmd.Flags().String("instructions", "", "extra instructions for the cleanup service")
	addRunFlags(cleanupCmd, true)

	rootCmd.AddCommand(kmlCmd, gpxCmd, geojsonCmd, jsonCmd, xlsxCmd, pdfCmd, cleanupCmd)
}

// pointFormat reads --format for modes that emit points: csv or geojson.
func pointFormat(cmd *cobra.Command) (convert.Format, error) {
	f, _ := cmd.Flags().GetString("format")
	format, err := convert.ParseFormat(f)
	if err != nil {
		return "", err
	}
	if format != convert.FormatCSV && format != convert.FormatGeoJSON {
		return "", fmt.Errorf("output format %q is not supported here: use csv or geojson", f)
	}
	return format, nil
}
