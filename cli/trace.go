package cli

import (
	"fmt"
	"io"

	"github.com/user-none/mm5snd/apu"
	"github.com/user-none/mm5snd/driver"
)

// TraceOptions selects what the trace dumper runs.
type TraceOptions struct {
	Track  uint8
	Region driver.Region
	Ticks  int
	Color  bool
}

// Trace runs the driver headless for opts.Ticks frames and prints every
// register write, one per line:
//
//	INIT(track,region)
//	WRITE(addr,value)
//	PLAY(tick)
//
// Region is printed as 0 for NTSC and 1 for PAL. A fatal driver error
// ends the trace with an ERROR line and is returned.
func Trace(w io.Writer, rom driver.Reader, layout driver.Layout, opts TraceOptions) error {
	st := newStyles(opts.Color)

	rec := &apu.Recorder{}
	drv := driver.New(rom, rec, layout)

	region := 0
	if opts.Region == driver.RegionPAL {
		region = 1
	}
	if _, err := fmt.Fprintln(w, st.render(st.init, fmt.Sprintf("INIT(%02X,%02X)", opts.Track, region))); err != nil {
		return err
	}
	drv.Init(opts.Track, opts.Region)
	if err := dumpWrites(w, st, rec.Take()); err != nil {
		return err
	}

	for t := 0; t < opts.Ticks; t++ {
		if _, err := fmt.Fprintln(w, st.render(st.play, fmt.Sprintf("PLAY(%d)", t))); err != nil {
			return err
		}
		advErr := drv.Advance()
		if err := dumpWrites(w, st, rec.Take()); err != nil {
			return err
		}
		if advErr != nil {
			fmt.Fprintln(w, st.render(st.err, fmt.Sprintf("ERROR(%v)", advErr)))
			return fmt.Errorf("tick %d: %w", t, advErr)
		}
	}
	return nil
}

func dumpWrites(w io.Writer, st styles, writes []apu.Write) error {
	for _, wr := range writes {
		if _, err := fmt.Fprintln(w, st.render(st.write, wr.String())); err != nil {
			return err
		}
	}
	return nil
}
