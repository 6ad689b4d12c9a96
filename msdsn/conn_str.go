// Package msdsn parses the settings that control how column data is read
// from a TDS stream.
package msdsn

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
)

type Log uint64

const (
	LogErrors      Log = 1
	LogMessages    Log = 2
	LogRows        Log = 4
	LogSQL         Log = 8
	LogParams      Log = 16
	LogTransaction Log = 32
	LogDebug       Log = 64
	LogRetries     Log = 128
)

const (
	defaultPacketSize = 4096
	minPacketSize     = 512
	maxPacketSize     = 32767
)

const urlScheme = "sqlserver"

// Connection string keys
const (
	LogParam   = "log"
	PacketSize = "packet size"
	ActivityID = "activityid"
)

var adoSynonyms = map[string]string{
	"packetsize":  PacketSize,
	"activity id": ActivityID,
}

type Config struct {
	LogFlags Log

	// Packet size of the stream being read, clamped to the TDS limits.
	PacketSize uint16

	// ActivityID is the 16 byte activity id reported in debug logs.
	ActivityID []byte

	// Parameters holds every key seen, after synonym resolution.
	Parameters map[string]string
}

// fileConfig mirrors Config in a TOML document.
type fileConfig struct {
	Log        uint64 `toml:"log"`
	PacketSize *int   `toml:"packet_size"`
	ActivityID string `toml:"activity_id"`
}

// Parse reads either an ADO style "key=value;key=value" string or a
// sqlserver:// URL whose query carries the same keys.
func Parse(dsn string) (Config, error) {
	var params map[string]string
	var err error
	if strings.HasPrefix(dsn, urlScheme+"://") {
		params, err = splitConnectionStringURL(dsn)
	} else if strings.Contains(dsn, "://") {
		return Config{}, fmt.Errorf("unsupported connection string scheme in %q", dsn)
	} else {
		params, err = splitConnectionString(dsn)
	}
	if err != nil {
		return Config{}, err
	}
	return newConfig(params)
}

// LoadFile reads Config from a TOML file.
func LoadFile(path string) (Config, error) {
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return Config{}, fmt.Errorf("cannot read config file %q: %w", path, err)
	}
	params := map[string]string{
		LogParam: strconv.FormatUint(fc.Log, 10),
	}
	if fc.PacketSize != nil {
		params[PacketSize] = strconv.Itoa(*fc.PacketSize)
	}
	if fc.ActivityID != "" {
		params[ActivityID] = fc.ActivityID
	}
	return newConfig(params)
}

func newConfig(params map[string]string) (Config, error) {
	p := Config{Parameters: params}

	if strlog, ok := params[LogParam]; ok {
		flags, err := strconv.ParseUint(strlog, 10, 64)
		if err != nil {
			return p, fmt.Errorf("invalid log parameter '%s': %s", strlog, err.Error())
		}
		p.LogFlags = Log(flags)
	}

	p.PacketSize = defaultPacketSize
	if strpsize, ok := params[PacketSize]; ok {
		psize, err := strconv.ParseInt(strpsize, 10, 32)
		if err != nil {
			return p, fmt.Errorf("invalid packet size '%v': %v", strpsize, err.Error())
		}
		// Ensure packet size falls within the TDS protocol range of 512 to 32767 bytes
		switch {
		case psize < minPacketSize:
			p.PacketSize = minPacketSize
		case psize > maxPacketSize:
			p.PacketSize = maxPacketSize
		default:
			p.PacketSize = uint16(psize)
		}
	}

	if stractivity, ok := params[ActivityID]; ok {
		id, err := uuid.Parse(stractivity)
		if err != nil {
			return p, fmt.Errorf("invalid activityid '%v': %v", stractivity, err.Error())
		}
		p.ActivityID = id[:]
	} else {
		id, err := uuid.NewRandom()
		if err == nil {
			p.ActivityID = id[:]
		}
	}
	return p, nil
}

// URL renders p as a sqlserver:// URL that Parse accepts.
func (p Config) URL() *url.URL {
	q := url.Values{}
	if p.LogFlags != 0 {
		q.Add(LogParam, strconv.FormatUint(uint64(p.LogFlags), 10))
	}
	q.Add(PacketSize, strconv.Itoa(int(p.PacketSize)))
	if len(p.ActivityID) == 16 {
		if id, err := uuid.FromBytes(p.ActivityID); err == nil {
			q.Add(ActivityID, id.String())
		}
	}
	return &url.URL{
		Scheme:   urlScheme,
		Host:     "localhost",
		RawQuery: q.Encode(),
	}
}

func splitConnectionStringURL(dsn string) (map[string]string, error) {
	res := map[string]string{}

	u, err := url.Parse(dsn)
	if err != nil {
		return res, err
	}

	if u.Scheme != urlScheme {
		return res, fmt.Errorf("scheme %s is not recognized", u.Scheme)
	}

	for k, v := range u.Query() {
		if len(v) > 1 {
			return res, fmt.Errorf("key %s provided more than once", k)
		}
		res[resolveSynonym(k)] = v[0]
	}
	return res, nil
}

// splitConnectionString splits an ADO connection string. A value wrapped
// in double quotes may contain ';' and '=', and "" inside it is a literal quote.
func splitConnectionString(dsn string) (map[string]string, error) {
	res := map[string]string{}
	rest := dsn
	for len(rest) > 0 {
		var part string
		var err error
		part, rest, err = nextADOPart(rest)
		if err != nil {
			return res, err
		}
		if len(part) == 0 {
			continue
		}
		lst := strings.SplitN(part, "=", 2)
		name := resolveSynonym(lst[0])
		if len(name) == 0 {
			continue
		}
		var value string
		if len(lst) > 1 {
			value = strings.TrimSpace(lst[1])
			if len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"' {
				value = strings.ReplaceAll(value[1:len(value)-1], `""`, `"`)
			}
		}
		res[name] = value
	}
	return res, nil
}

func nextADOPart(s string) (part, rest string, err error) {
	inQuotes := false
	eq := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '=' && !inQuotes && !eq:
			eq = true
			// a value opening with '"' runs to the matching quote
			j := i + 1
			for j < len(s) && unicode.IsSpace(rune(s[j])) {
				j++
			}
			if j < len(s) && s[j] == '"' {
				inQuotes = true
				i = j
			}
		case c == '"' && inQuotes:
			if i+1 < len(s) && s[i+1] == '"' {
				i++
				continue
			}
			inQuotes = false
		case c == ';' && !inQuotes:
			return s[:i], s[i+1:], nil
		}
	}
	if inQuotes {
		return "", "", fmt.Errorf("unterminated quoted value in connection string")
	}
	return s, "", nil
}

func resolveSynonym(key string) string {
	name := strings.ToLower(strings.TrimSpace(key))
	if syn, ok := adoSynonyms[name]; ok {
		return syn
	}
	return name
}
