// Command handlog prints a recorded hand in the terminal.
//
//	handlog [-lang de] hand.json
//	handlog -code <share code>
//	cat hand.json | handlog -
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/pterm/pterm"

	"holdem-recorder/history"
	"holdem-recorder/locale"
)

func main() {
	langFlag := flag.String("lang", locale.Default, "transcript language ("+fmt.Sprint(locale.Languages())+")")
	codeFlag := flag.String("code", "", "render a share code instead of a file")
	plainFlag := flag.Bool("plain", false, "print the bare transcript without colors or panels")
	flag.Parse()

	spec, err := loadSpec(*codeFlag, flag.Args())
	if err != nil {
		fail(err)
	}
	h, err := history.Build(spec)
	if err != nil {
		fail(err)
	}

	b := locale.Lookup(*langFlag)
	if *plainFlag {
		fmt.Print(history.Transcript(h, spec.Title, b))
		return
	}
	pterm.Println(render(h, spec.Title, b))
	if code, err := history.EncodeShareCode(history.Export(h, spec.Title)); err == nil {
		pterm.Info.Printfln("share code: %s", code)
	}
}

func loadSpec(code string, args []string) (history.HandSpec, error) {
	if code != "" {
		return history.DecodeShareCode(code)
	}
	if len(args) != 1 {
		return history.HandSpec{}, fmt.Errorf("usage: %s [-lang xx] <hand.json | - | -code CODE>", os.Args[0])
	}

	var r io.Reader = os.Stdin
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return history.HandSpec{}, err
		}
		defer f.Close()
		r = f
	}
	var spec history.HandSpec
	if err := json.NewDecoder(r).Decode(&spec); err != nil {
		return history.HandSpec{}, fmt.Errorf("read hand spec: %w", err)
	}
	return spec, nil
}

func fail(err error) {
	var replayErr *history.ReplayError
	if errors.As(err, &replayErr) {
		pterm.Error.Printfln("%s", replayErr.Message)
		pterm.Println(describeReplayError(replayErr))
		os.Exit(1)
	}
	pterm.Error.Println(err)
	os.Exit(1)
}
