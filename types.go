package coldata

// fixed-length data types
// http://msdn.microsoft.com/en-us/library/dd341171.aspx
const (
	typeNull   = 0x1f
	typeInt4   = 0x38
	typeMoney  = 0x3c
	typeFlt8   = 0x3e
	typeMoney4 = 0x7a
	typeInt8   = 0x7f
)

// variable-length data types
// http://msdn.microsoft.com/en-us/library/dd358341.aspx
const (
	// byte len types
	typeGuid     = 0x24
	typeIntN     = 0x26
	typeDecimalN = 0x6a
	typeMoneyN   = 0x6e
)

// Type ids of the columns this package decodes.
const (
	TypeNull   = typeNull
	TypeMoney  = typeMoney
	TypeMoney4 = typeMoney4
	TypeMoneyN = typeMoneyN
)

// TYPE_INFO rule
// http://msdn.microsoft.com/en-us/library/dd358284.aspx
type typeInfo struct {
	TypeId uint8
	Size   int
	Reader func(ti *typeInfo, r *Buffer) (ColumnData, error)
}

// ColumnInfo is one entry of a COLMETADATA token.
type ColumnInfo struct {
	Name     string
	UserType uint32
	Flags    uint16
	ti       typeInfo
}

const colFlagNullable = 0x1

func (c ColumnInfo) Nullable() bool {
	return c.Flags&colFlagNullable != 0
}

// DatabaseTypeName is the server side type name of the column.
func (c ColumnInfo) DatabaseTypeName() string {
	return c.ti.databaseTypeName()
}

func (ti *typeInfo) databaseTypeName() string {
	switch ti.TypeId {
	case typeNull:
		return "NULL"
	case typeMoney:
		return "MONEY"
	case typeMoney4:
		return "SMALLMONEY"
	case typeMoneyN:
		if ti.Size == 4 {
			return "SMALLMONEY"
		}
		return "MONEY"
	}
	return ""
}

// readTypeInfo reads the rest of a TYPE_INFO after its type id byte and
// selects the value reader for the type.
func readTypeInfo(r *Buffer, typeId uint8) (res typeInfo, err error) {
	res.TypeId = typeId
	switch typeId {
	case typeNull, typeMoney4, typeMoney:
		// those are fixed length types
		switch typeId {
		case typeNull:
			res.Size = 0
		case typeMoney4:
			res.Size = 4
		case typeMoney:
			res.Size = 8
		}
		res.Reader = readFixedType
	case typeMoneyN:
		size, err := r.ReadByte()
		if err != nil {
			return res, err
		}
		return moneyNTypeInfo(int(size))
	default:
		return res, ProtocolError.New("unsupported type id 0x%02x", typeId)
	}
	return res, nil
}

func moneyNTypeInfo(size int) (typeInfo, error) {
	if size != 4 && size != 8 {
		return typeInfo{}, ProtocolError.New("invalid size %d for MONEYNTYPE", size)
	}
	return typeInfo{TypeId: typeMoneyN, Size: size, Reader: readByteLenType}, nil
}

func readFixedType(ti *typeInfo, r *Buffer) (ColumnData, error) {
	switch ti.TypeId {
	case typeNull:
		return NullNumeric(), nil
	case typeMoney4, typeMoney:
		return decodeMoney(r, uint8(ti.Size))
	}
	return ColumnData{}, ProtocolError.New("invalid fixed type id 0x%02x", ti.TypeId)
}

func readByteLenType(ti *typeInfo, r *Buffer) (ColumnData, error) {
	size, err := r.ReadByte()
	if err != nil {
		return ColumnData{}, err
	}
	if int(size) > ti.Size {
		return ColumnData{}, ProtocolError.New("value length %d exceeds column size %d", size, ti.Size)
	}
	switch ti.TypeId {
	case typeMoneyN:
		return decodeMoney(r, size)
	}
	return ColumnData{}, ProtocolError.New("invalid byte length type id 0x%02x", ti.TypeId)
}

// ReadColumnValue reads one value of a column whose TYPE_INFO is already
// known. maxSize is the size sent in COLMETADATA for byte length types and
// is ignored for fixed-length types.
func ReadColumnValue(r *Buffer, typeId uint8, maxSize int) (ColumnData, error) {
	var ti typeInfo
	var err error
	if typeId == typeMoneyN {
		ti, err = moneyNTypeInfo(maxSize)
	} else {
		ti, err = readTypeInfo(r, typeId)
	}
	if err != nil {
		return ColumnData{}, err
	}
	return ti.Reader(&ti, r)
}
