package internal

type Transaction string

const (
	TransactionRent    Transaction = "RENT"
	TransactionSale    Transaction = "SALE"
	TransactionUnknown Transaction = "UNKNOWN"
)

// CurrencyUnknown marks a price candidate whose currency token could not be
// resolved against the profile alias table (only retained when the profile
// does not require a currency).
const CurrencyUnknown = "UNKNOWN"

type BlockKind string

const (
	BlockListing BlockKind = "listing"
	BlockHeader  BlockKind = "header"
	BlockNoise   BlockKind = "noise"
)

// RawLine is one physical input line plus its 0-based source index.
type RawLine struct {
	Index int
	Text  string
}

// HeaderContext is the (transaction, property type, category) triplet
// inherited from the most recent matching section header. Fields are
// append-only per document: a later header replaces a field only with a
// non-empty value, never clears it.
type HeaderContext struct {
	Transaction  Transaction
	PropertyType *string
	Category     *string
}

func NewHeaderContext() HeaderContext {
	return HeaderContext{Transaction: TransactionUnknown}
}

// Merge returns the context updated with the non-empty fields of other.
func (h HeaderContext) Merge(other HeaderContext) HeaderContext {
	out := h
	if other.Transaction != "" && other.Transaction != TransactionUnknown {
		out.Transaction = other.Transaction
	}
	if other.PropertyType != nil && *other.PropertyType != "" {
		out.PropertyType = other.PropertyType
	}
	if other.Category != nil && *other.Category != "" {
		out.Category = other.Category
	}
	return out
}

// Block is a closed segment of the document: one listing, one header line,
// or a run of pre-listing noise. Once emitted by the segmentation engine it
// is never mutated.
type Block struct {
	StartLine int
	Lines     []RawLine
	Header    HeaderContext
	Kind      BlockKind
	QCFlags   []string
}

// Text joins the block's lines with single spaces, skipping blank lines.
func (b Block) Text() string {
	out := ""
	for _, line := range b.Lines {
		if line.Text == "" {
			continue
		}
		if out != "" {
			out += " "
		}
		out += line.Text
	}
	return out
}

// Span is a half-open [Start,End) byte range into a block's text.
type Span struct {
	Start int
	End   int
}

// PriceCandidate is one currency+amount token extracted from a listing
// block. Immutable after creation.
type PriceCandidate struct {
	CurrencyCode string
	Amount       float64
	Source       Span
	Confidence   float64
	IsRangeMin   bool
	IsRangeMax   bool
}

// ParsedListing is the terminal artifact handed to downstream consumers
// (FX standardizer, neighborhood matcher, CSV/XLSX writers). RawText is
// kept verbatim for audit even when no price was found.
type ParsedListing struct {
	LineNo  int
	RawText string
	Header  HeaderContext
	Prices  []PriceCandidate
	QCFlags []string
}

// QC flags recorded on listings/blocks. All are diagnostics: processing
// never aborts on any of them.
const (
	QCNoPriceFound           = "NoPriceFound"
	QCNoCurrencyResolved     = "NoCurrencyResolved"
	QCUnresolvedCurrency     = "UnresolvedCurrency"
	QCOrphanContinuation     = "OrphanContinuation"
	QCAmbiguousRangeRejected = "AmbiguousRangeRejected"
	QCMultiCandidateKeptOne  = "MultiCandidateKeptFirst"
)

// ExportRow is the flat per-price shape written to CSV/XLSX. A listing with
// no surviving candidate still exports one row with empty price columns.
type ExportRow struct {
	DocumentID   int
	LineNo       int
	RawText      string
	Transaction  string
	PropertyType *string
	Category     *string
	CurrencyCode *string
	Amount       *float64
	IsRangeMin   bool
	IsRangeMax   bool
	Confidence   *float64
	QCFlags      string
}

func StringPtr(v string) *string  { return &v }
func FloatPtr(v float64) *float64 { return &v }
