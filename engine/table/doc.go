// Package table implements a row table whose schema can change while it
// holds data.
//
// # Overview
//
// Every row is a fixed-width byte record of Stride() bytes. Fields occupy
// byte ranges inside the record; the first Usage() bytes are covered by
// fields or by idle ranges left behind by removed fields. Idle ranges are
// reused by later AddField calls before the used area is extended.
//
//	row p:  | f0 | f1 | idle | f3 |  ....  |
//	        0                   usage     stride
//
// Rows are addressed through a virtual index. RemoveRecord keeps storage
// packed by moving the last physical row into the hole and repointing the
// virtual slot that referenced it, so every other virtual row keeps its
// content.
//
// # Field Types
//
// Types are named by a single ASCII tag:
//
//	a I8   b I16   c I32   d I64
//	e U8   f U16   g U32   h U64
//	i F32  j F64   k Text  l Date  m Time
//
// Text values live in an arena owned by the table; the row holds a 4-byte
// handle where 0 means the empty string. Date literals look like 2024.10.23
// and Time literals like 17:56:45. An all-zero Date or Time reads back as the
// empty literal, like an empty Text.
//
// # Records
//
// Records are separator-delimited literals in field order. Parsing is strict:
// integers must fit their declared width and a record is validated in full
// before any row is touched.
//
// A Table is not safe for concurrent use.
package table
