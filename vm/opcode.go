package vm

import (
	"bytes"
	"fmt"
	"sort"
)

// OpCode identifies an instruction.
type OpCode uint8

const (
	OpNOP OpCode = iota
	OpFRAME
	OpSEGMENT
	OpCLOSE
	OpRESET
	OpFORWARD
	OpFORWARDIFTRUE
	OpLOOP
	OpBREAK
	OpCONTINUE
	OpDISCARD
	OpINVERT
	OpERROR
	OpNEXT
	OpREJECT
	OpACCEPT
	OpCALL
	OpMATCH
	OpCHAR
	OpEOF
	OpSTATIC
	OpLOAD
	OpSTORE
	OpBUILTIN
	OpALIAS
)

// Meta returns the metadata for this opcode.
func (code OpCode) Meta() *OpMeta {
	if int(code) < len(opMeta) {
		return &opMeta[code]
	}
	return &OpMeta{Code: code, Name: fmt.Sprintf("OP%d", code), Illegal: true}
}

func (code OpCode) String() string {
	return code.Meta().Name
}

// ImmType describes how an instruction operand is interpreted.
type ImmType uint8

const (
	ImmNone ImmType = iota
	ImmCodeOffset
	ImmCloseMode
	ImmFlag
	ImmCharFlags
	ImmCount
	ImmStringIdx
	ImmRuleIdx
	ImmLiteralIdx
	ImmClassIdx
	ImmStaticIdx
	ImmSlot
	ImmBuiltinIdx
)

// ImmMeta describes one operand of an opcode.
type ImmMeta struct {
	Type     ImmType
	Required bool
}

// IsPresent returns true iff an operand with value v should be shown.
// Optional operands are absent when zero.
func (m ImmMeta) IsPresent(v int) bool {
	return m.Type != ImmNone && (m.Required || v != 0)
}

// OpMeta is the metadata for an opcode.
type OpMeta struct {
	Code    OpCode
	N       ImmMeta
	Arg     ImmMeta
	Name    string
	Illegal bool
}

func none() ImmMeta              { return ImmMeta{ImmNone, false} }
func required(t ImmType) ImmMeta { return ImmMeta{t, true} }
func optional(t ImmType) ImmMeta { return ImmMeta{t, false} }

var opMeta = []OpMeta{
	{Code: OpNOP, N: none(), Arg: none(), Name: "NOP"},
	{Code: OpFRAME, N: optional(ImmCodeOffset), Arg: none(), Name: "FRAME"},
	{Code: OpSEGMENT, N: required(ImmCodeOffset), Arg: none(), Name: "SEGMENT"},
	{Code: OpCLOSE, N: required(ImmCloseMode), Arg: none(), Name: "CLOSE"},
	{Code: OpRESET, N: none(), Arg: none(), Name: "RESET"},
	{Code: OpFORWARD, N: required(ImmCodeOffset), Arg: none(), Name: "FORWARD"},
	{Code: OpFORWARDIFTRUE, N: required(ImmCodeOffset), Arg: none(), Name: "FORWARDIFTRUE"},
	{Code: OpLOOP, N: required(ImmCodeOffset), Arg: none(), Name: "LOOP"},
	{Code: OpBREAK, N: optional(ImmFlag), Arg: none(), Name: "BREAK"},
	{Code: OpCONTINUE, N: none(), Arg: none(), Name: "CONTINUE"},
	{Code: OpDISCARD, N: none(), Arg: none(), Name: "DISCARD"},
	{Code: OpINVERT, N: none(), Arg: none(), Name: "INVERT"},
	{Code: OpERROR, N: required(ImmStringIdx), Arg: none(), Name: "ERROR"},
	{Code: OpNEXT, N: none(), Arg: none(), Name: "NEXT"},
	{Code: OpREJECT, N: none(), Arg: none(), Name: "REJECT"},
	{Code: OpACCEPT, N: optional(ImmFlag), Arg: none(), Name: "ACCEPT"},
	{Code: OpCALL, N: required(ImmRuleIdx), Arg: none(), Name: "CALL"},
	{Code: OpMATCH, N: required(ImmLiteralIdx), Arg: optional(ImmCharFlags), Name: "MATCH"},
	{Code: OpCHAR, N: required(ImmClassIdx), Arg: optional(ImmCharFlags), Name: "CHAR"},
	{Code: OpEOF, N: none(), Arg: none(), Name: "EOF"},
	{Code: OpSTATIC, N: required(ImmStaticIdx), Arg: none(), Name: "STATIC"},
	{Code: OpLOAD, N: required(ImmSlot), Arg: none(), Name: "LOAD"},
	{Code: OpSTORE, N: required(ImmSlot), Arg: none(), Name: "STORE"},
	{Code: OpBUILTIN, N: required(ImmBuiltinIdx), Arg: required(ImmCount), Name: "BUILTIN"},
	{Code: OpALIAS, N: required(ImmStringIdx), Arg: none(), Name: "ALIAS"},
}

func init() {
	assert(sort.IsSorted(byCode(opMeta)), "IsSorted(byCode(opMeta))")
	for i := range opMeta {
		assert(opMeta[i].Code == OpCode(i), "opMeta[%d] holds %s", i, opMeta[i].Name)
	}
}

// CloseMode is the operand of CLOSE: what happens to the captures produced
// inside the frame being closed.
type CloseMode int

const (
	CloseDiscard CloseMode = iota
	CloseKeep
	CloseCollect
	CloseValue
	CloseCond
)

var closeModeNames = []string{"discard", "keep", "collect", "value", "cond"}

func (m CloseMode) String() string {
	if m >= 0 && int(m) < len(closeModeNames) {
		return closeModeNames[m]
	}
	return fmt.Sprintf("CloseMode(%d)", int(m))
}

// Flags for the Arg operand of MATCH and CHAR.
const (
	FlagSilent = 1 << iota
	FlagMany
)

// Op is a single instruction.
type Op struct {
	Code OpCode

	// N is the primary operand: a code offset relative to this
	// instruction, a table index, a slot, a CloseMode or a flag.
	N int

	// Arg is the secondary operand.
	Arg int
}

// String provides a programmer-friendly debugging string for the Op.
func (op Op) String() string {
	var buf bytes.Buffer
	first := true

	f := func(m ImmMeta, v int) {
		if m.IsPresent(v) {
			if !first {
				buf.WriteByte(',')
			}
			fmt.Fprintf(&buf, "%d", v)
			first = false
		}
	}

	meta := op.Code.Meta()
	buf.WriteString(meta.Name)
	buf.WriteByte('<')
	f(meta.N, op.N)
	f(meta.Arg, op.Arg)
	buf.WriteByte('>')
	return buf.String()
}

// Constructors used by the compiler.

func Nop() Op                      { return Op{Code: OpNOP} }
func Frame(fuse int) Op            { return Op{Code: OpFRAME, N: fuse} }
func Segment(n int) Op             { return Op{Code: OpSEGMENT, N: n} }
func Close(mode CloseMode) Op      { return Op{Code: OpCLOSE, N: int(mode)} }
func Reset() Op                    { return Op{Code: OpRESET} }
func Forward(n int) Op             { return Op{Code: OpFORWARD, N: n} }
func ForwardIfTrue(n int) Op       { return Op{Code: OpFORWARDIFTRUE, N: n} }
func Loop(n int) Op                { return Op{Code: OpLOOP, N: n} }
func Break(withValue bool) Op      { return Op{Code: OpBREAK, N: b2i(withValue)} }
func Continue() Op                 { return Op{Code: OpCONTINUE} }
func Discard() Op                  { return Op{Code: OpDISCARD} }
func Invert() Op                   { return Op{Code: OpINVERT} }
func Error(s int) Op               { return Op{Code: OpERROR, N: s} }
func Next() Op                     { return Op{Code: OpNEXT} }
func RejectRule() Op               { return Op{Code: OpREJECT} }
func AcceptRule(withValue bool) Op { return Op{Code: OpACCEPT, N: b2i(withValue)} }
func Call(rule int) Op             { return Op{Code: OpCALL, N: rule} }
func Match(lit, flags int) Op      { return Op{Code: OpMATCH, N: lit, Arg: flags} }
func Char(class, flags int) Op     { return Op{Code: OpCHAR, N: class, Arg: flags} }
func EOF() Op                      { return Op{Code: OpEOF} }
func Static(i int) Op              { return Op{Code: OpSTATIC, N: i} }
func Load(slot int) Op             { return Op{Code: OpLOAD, N: slot} }
func Store(slot int) Op            { return Op{Code: OpSTORE, N: slot} }
func CallBuiltin(b, argc int) Op   { return Op{Code: OpBUILTIN, N: b, Arg: argc} }
func Alias(s int) Op               { return Op{Code: OpALIAS, N: s} }

type byCode []OpMeta

var _ sort.Interface = (byCode)(nil)

func (x byCode) Len() int           { return len(x) }
func (x byCode) Less(i, j int) bool { return x[i].Code < x[j].Code }
func (x byCode) Swap(i, j int)      { x[i], x[j] = x[j], x[i] }

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
