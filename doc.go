// Package coldata decodes TDS column values of the SQL Server money types.
//
// MONEY and SMALLMONEY travel as 8 and 4 byte little-endian words holding a
// fixed-point value with a scale of 4. MONEYN is the nullable form, whose
// value is prefixed with a byte length of 0 (NULL), 4 or 8.
//
// # Decoding a single value
//
// Given a ByteSource positioned after the length byte:
//
//	v, err := coldata.DecodeMoney(src, 8)
//	if err != nil {
//		// coldata.IsProtocolError(err) for a bad length,
//		// otherwise the error the source returned
//	}
//	d, ok := v.Decimal() // ok is false for NULL
//
// # Reading a result set
//
// A Session reads COLMETADATA, ROW and DONE tokens from a reply stream:
//
//	cfg, _ := msdsn.Parse("log=5;packet size=4096")
//	sess := coldata.NewSession(conn, cfg, nil)
//	res, err := sess.ReadResult(ctx)
//
// Each call returns one result set; Result.More reports whether another
// follows.
//
// # Logging
//
// Install a Logger with [SetLogger] or a [ContextLogger] with
// [SetContextLogger]; the "log" connection string flags select the
// categories written.
package coldata
