package main

import (
	"flag"
	"strconv"
)

// counter is a boolean flag counting its occurrences, as in -v -v.
type counter int

func (c *counter) String() string {
	return strconv.Itoa(int(*c))
}

func (c *counter) Set(string) error {
	*c++
	return nil
}

func (c *counter) IsBoolFlag() bool {
	return true
}

type flags struct {
	configFile string
	logFile    string
	verbose    counter
	quiet      counter
	version    bool
}

func parseFlags(fs *flag.FlagSet, args []string) (flags, error) {
	var f flags
	fs.StringVar(&f.configFile, "c", "", "pipeline file to use (overrides SUBPUB_CONFIG)")
	fs.StringVar(&f.logFile, "l", "", "file to also log to, at every level")
	fs.Var(&f.verbose, "v", "increase verbosity (repeatable)")
	fs.Var(&f.quiet, "q", "decrease verbosity (repeatable)")
	fs.BoolVar(&f.version, "version", false, "print the version and exit")
	err := fs.Parse(args)
	return f, err
}
