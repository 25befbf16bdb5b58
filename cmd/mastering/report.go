package main

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/cwbudde/algo-master/mastering"
	"github.com/cwbudde/algo-master/measure/spectrum"
)

// loudnessToleranceLU is the pass band printed next to the integrated
// loudness target.
const loudnessToleranceLU = 1.0

var (
	accentColor = lipgloss.Color("#3A7BD5")
	warnColor   = lipgloss.Color("#D58A3A")
	mutedColor  = lipgloss.Color("#888888")
	textColor   = lipgloss.Color("#FFFFFF")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(mutedColor).
			MarginTop(1)

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(warnColor)

	keyStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Width(14)

	valueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(textColor)

	okStyle = lipgloss.NewStyle().
			Foreground(accentColor)

	barStyle = lipgloss.NewStyle().
			Foreground(accentColor)
)

func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "%s %v\n", errorStyle.Render("Error:"), err)
}

func printPresets(w io.Writer, names []string) {
	fmt.Fprintln(w, titleStyle.Render("Presets"))

	for _, name := range names {
		fmt.Fprintf(w, "  %s\n", valueStyle.Render(name))
	}
}

// renderReport formats a finished job as a before/after table followed by
// target validation, stereo field and the output spectrum.
func renderReport(res *mastering.Result, input, output string) string {
	var b strings.Builder

	fmt.Fprintln(&b, titleStyle.Render("Mastered "+input))
	row(&b, "Output", output)
	row(&b, "Preset", res.Preset.Name)
	row(&b, "Format", fmt.Sprintf("%d Hz, %d ch, %d frames",
		res.Output.SampleRate, res.Output.ChannelCount(), res.Output.Frames()))

	in, out := res.InputMetrics, res.Metrics

	fmt.Fprintln(&b, sectionStyle.Render("Levels (input -> output)"))
	levelRow(&b, "RMS", in.RMSDB, out.RMSDB, "dBFS")
	levelRow(&b, "Peak", in.PeakDB, out.PeakDB, "dBFS")
	levelRow(&b, "True peak", in.TruePeakDB, out.TruePeakDB, "dBTP")
	levelRow(&b, "Integrated", in.IntegratedLUFS, out.IntegratedLUFS, "LUFS")
	levelRow(&b, "Short-term", in.ShortTermLUFS, out.ShortTermLUFS, "LUFS")
	levelRow(&b, "Crest", in.CrestDB(), out.CrestDB(), "dB")

	v := res.Validation

	fmt.Fprintln(&b, sectionStyle.Render("Targets"))
	row(&b, "Loudness", fmt.Sprintf("%.1f LUFS (%+.1f LU) %s",
		v.TargetLUFS, v.LoudnessDeltaLU, verdict(math.Abs(v.LoudnessDeltaLU) <= loudnessToleranceLU)))
	row(&b, "Ceiling", fmt.Sprintf("%.1f dBTP %s", v.TruePeakCeilingDB, verdict(!v.TruePeakExceeded)))

	if out.Stereo != nil {
		fmt.Fprintln(&b, sectionStyle.Render("Stereo"))
		row(&b, "Correlation", fmt.Sprintf("%.2f", out.Stereo.Correlation))
		row(&b, "Width", fmt.Sprintf("%.2f", out.Stereo.Width()))
	}

	if len(out.Spectrum) > 0 {
		fmt.Fprintln(&b, sectionStyle.Render("Spectrum"))
		writeSpectrum(&b, out.Spectrum)
	}

	return b.String()
}

func row(b *strings.Builder, key, value string) {
	fmt.Fprintf(b, "%s %s\n", keyStyle.Render(key), valueStyle.Render(value))
}

func levelRow(b *strings.Builder, key string, in, out float64, unit string) {
	row(b, key, fmt.Sprintf("%7.2f -> %7.2f %s", in, out, unit))
}

func verdict(ok bool) string {
	if ok {
		return okStyle.Render("ok")
	}

	return errorStyle.Render("miss")
}

const (
	barFloorDB = -60.0
	barWidth   = 30
)

func writeSpectrum(b *strings.Builder, bands []spectrum.Band) {
	for _, band := range bands {
		label := fmt.Sprintf("%.0f Hz", band.CenterHz)
		if band.CenterHz >= 1000 {
			label = fmt.Sprintf("%.1f kHz", band.CenterHz/1000)
		}

		fmt.Fprintf(b, "%s %s %6.1f dB\n",
			keyStyle.Render(label), barStyle.Render(bar(band.LevelDB)), band.LevelDB)
	}
}

// bar maps a level between barFloorDB and 0 dB to a fixed-width meter.
func bar(levelDB float64) string {
	frac := (levelDB - barFloorDB) / -barFloorDB
	frac = math.Max(0, math.Min(1, frac))
	n := int(math.Round(frac * barWidth))

	return strings.Repeat("#", n) + strings.Repeat(".", barWidth-n)
}
