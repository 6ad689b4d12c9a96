// Command tdsmoney decodes hex dumps of TDS money column values.
//
//	tdsmoney -type moneyn "08 00 00 00 00 10 27 00 00"
//	tdsmoney -type money4 ffffffff
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	coldata "github.com/tdsproto/go-coldata"
	"github.com/tdsproto/go-coldata/msdsn"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("tdsmoney: ")
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

var typeIds = map[string]uint8{
	"money":  coldata.TypeMoney,
	"money4": coldata.TypeMoney4,
	"moneyn": coldata.TypeMoneyN,
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("tdsmoney", flag.ContinueOnError)
	var (
		configFile = fs.String("config", "", "path to a TOML config file")
		dsn        = fs.String("dsn", "", "connection string style settings, e.g. \"log=64\"")
		typeName   = fs.String("type", "moneyn", "column type: money, money4 or moneyn")
		size       = fs.Int("size", 8, "column size for moneyn (4 or 8)")
		version    = fs.Bool("version", false, "print the library version and exit")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *version {
		_, err := fmt.Fprintf(stdout, "%s (0x%08x)\n", coldata.Version(), coldata.VersionNumber())
		return err
	}

	cfg, err := loadConfig(*configFile, *dsn)
	if err != nil {
		return err
	}
	typeId, ok := typeIds[strings.ToLower(*typeName)]
	if !ok {
		return fmt.Errorf("unknown column type %q", *typeName)
	}

	for _, arg := range fs.Args() {
		payload, err := hex.DecodeString(strings.Join(strings.Fields(arg), ""))
		if err != nil {
			return fmt.Errorf("invalid hex %q: %w", arg, err)
		}
		buf := coldata.NewBufferFromBytes(payload)
		v, err := coldata.ReadColumnValue(buf, typeId, *size)
		if err != nil {
			return fmt.Errorf("decoding %q: %w", arg, err)
		}
		if n := int64(len(payload)) - buf.BytesRead(); n > 0 && cfg.LogFlags&msdsn.LogDebug != 0 {
			log.Printf("DEBUG: %d trailing bytes ignored in %q", n, arg)
		}
		if _, err := fmt.Fprintln(stdout, v); err != nil {
			return err
		}
	}
	return nil
}

// loadConfig prefers dsn over configFile; with neither the defaults apply.
func loadConfig(configFile, dsn string) (msdsn.Config, error) {
	if dsn != "" {
		return msdsn.Parse(dsn)
	}
	if configFile != "" {
		return msdsn.LoadFile(configFile)
	}
	return msdsn.Parse("")
}
