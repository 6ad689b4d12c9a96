package coldata

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/tdsproto/go-coldata/msdsn"
	"golang.org/x/text/encoding/unicode"
)

// token ids
const (
	colMetadataToken = 0x81
	rowToken         = 0xd1
	doneToken        = 0xfd
	doneProcToken    = 0xfe
	doneInProcToken  = 0xff
)

// done flags
// https://msdn.microsoft.com/en-us/library/dd340421.aspx
const (
	doneMore  = 1
	doneError = 2
	doneCount = 0x10
)

// Result is the decoded content of one result set. More reports that the
// reply carries further result sets; call ReadResult again to read them.
type Result struct {
	Columns  []ColumnInfo
	Rows     [][]ColumnData
	RowCount uint64
	More     bool
}

// Session reads result sets of money columns off a TDS reply stream.
type Session struct {
	buf        *Buffer
	logger     ContextLogger
	logFlags   uint64
	connid     uuid.UUID
	activityid uuid.UUID
}

// NewSession returns a Session reading packets from transport. When logger
// is nil the logger installed with SetLogger or SetContextLogger is used.
func NewSession(transport io.Reader, p msdsn.Config, logger ContextLogger) *Session {
	return newSession(NewBuffer(transport, packetSizeOf(p)), logger, p)
}

func packetSizeOf(p msdsn.Config) int {
	if p.PacketSize == 0 {
		return 4096
	}
	return int(p.PacketSize)
}

func newSession(buf *Buffer, logger ContextLogger, p msdsn.Config) *Session {
	sess := &Session{
		buf:      buf,
		logFlags: uint64(p.LogFlags),
	}
	if logger != nil {
		sess.logger = optionalLogger{logger}
	} else {
		sess.logger = currentLogger()
	}
	if id, err := uuid.FromBytes(p.ActivityID); err == nil {
		sess.activityid = id
	}
	// generating a guid has a small chance of failure. Make a best effort
	connid, cerr := uuid.NewRandom()
	if cerr == nil {
		sess.connid = connid
	}
	return sess
}

func (s *Session) ConnectionID() uuid.UUID {
	return s.connid
}

func (s *Session) ActivityID() uuid.UUID {
	return s.activityid
}

// ReadResult reads tokens up to the DONE that closes the next result set and
// returns its columns and rows. DONE tokens that close no result set are
// skipped. Cancelling ctx stops the read between columns; the stream is
// left wherever the last complete value ended.
func (s *Session) ReadResult(ctx context.Context) (*Result, error) {
	if s.logFlags&uint64(msdsn.LogDebug) != 0 {
		msg := fmt.Sprintf("Reading result with connection id '%s' and activity id '%s'", s.connid, s.activityid)
		s.logger.Log(ctx, msdsn.LogDebug, msg)
	}
	res := &Result{}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		token, err := s.buf.ReadByte()
		if err != nil {
			return nil, s.logError(ctx, err)
		}
		switch token {
		case colMetadataToken:
			if res.Columns != nil {
				return nil, s.logError(ctx, ProtocolError.New("column metadata before the previous result set was done"))
			}
			res.Columns, err = s.readColMetadata()
			if err != nil {
				return nil, s.logError(ctx, err)
			}
		case rowToken:
			if res.Columns == nil {
				return nil, s.logError(ctx, ProtocolError.New("row token without column metadata"))
			}
			row, err := s.readRow(ctx, res.Columns)
			if err != nil {
				return nil, err
			}
			res.Rows = append(res.Rows, row)
		case doneToken, doneProcToken, doneInProcToken:
			status, err := s.readDone()
			if err != nil {
				return nil, s.logError(ctx, err)
			}
			if status.Status&doneCount != 0 {
				res.RowCount = status.RowCount
			}
			if status.Status&doneError != 0 {
				return nil, s.logError(ctx, ProtocolError.New("server reported an error in DONE status 0x%04x", status.Status))
			}
			if status.Status&doneMore == 0 {
				return res, nil
			}
			if res.Columns != nil {
				res.More = true
				return res, nil
			}
		default:
			return nil, s.logError(ctx, ProtocolError.New("unexpected token 0x%02x", token))
		}
	}
}

type doneStruct struct {
	Status   uint16
	CurCmd   uint16
	RowCount uint64
}

func (s *Session) readDone() (res doneStruct, err error) {
	if res.Status, err = s.buf.ReadUint16(); err != nil {
		return
	}
	if res.CurCmd, err = s.buf.ReadUint16(); err != nil {
		return
	}
	res.RowCount, err = s.buf.ReadUint64()
	return
}

// COLMETADATA
// http://msdn.microsoft.com/en-us/library/dd357363.aspx
func (s *Session) readColMetadata() ([]ColumnInfo, error) {
	count, err := s.buf.ReadUint16()
	if err != nil {
		return nil, err
	}
	if count == 0xffff {
		// no metadata is sent
		return []ColumnInfo{}, nil
	}
	columns := make([]ColumnInfo, count)
	for i := range columns {
		column := &columns[i]
		if column.UserType, err = s.buf.ReadUint32(); err != nil {
			return nil, err
		}
		if column.Flags, err = s.buf.ReadUint16(); err != nil {
			return nil, err
		}
		typeId, err := s.buf.ReadByte()
		if err != nil {
			return nil, err
		}
		if column.ti, err = readTypeInfo(s.buf, typeId); err != nil {
			return nil, err
		}
		if column.Name, err = s.readBVarChar(); err != nil {
			return nil, err
		}
	}
	return columns, nil
}

// readBVarChar reads a UCS-2 string prefixed by its length in characters.
func (s *Session) readBVarChar() (string, error) {
	numchars, err := s.buf.ReadByte()
	if err != nil {
		return "", err
	}
	if numchars == 0 {
		return "", nil
	}
	buf := make([]byte, int(numchars)*2)
	if err := s.buf.ReadFull(buf); err != nil {
		return "", err
	}
	utf8, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder().Bytes(buf)
	if err != nil {
		return "", ProtocolError.New("invalid UCS-2 column name: %v", err)
	}
	return string(utf8), nil
}

// ROW
// http://msdn.microsoft.com/en-us/library/dd357254.aspx
func (s *Session) readRow(ctx context.Context, columns []ColumnInfo) ([]ColumnData, error) {
	row := make([]ColumnData, len(columns))
	for i := range columns {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		col := &columns[i]
		v, err := col.ti.Reader(&col.ti, s.buf)
		if err != nil {
			return nil, s.logError(ctx, err)
		}
		row[i] = v
		if s.logFlags&uint64(msdsn.LogRows) != 0 {
			s.logger.Log(ctx, msdsn.LogRows, fmt.Sprintf("column %q (%s): %s", col.Name, col.DatabaseTypeName(), v))
		}
	}
	return row, nil
}

func (s *Session) logError(ctx context.Context, err error) error {
	if s.logFlags&uint64(msdsn.LogErrors) != 0 {
		s.logger.Log(ctx, msdsn.LogErrors, err.Error())
	}
	return err
}
