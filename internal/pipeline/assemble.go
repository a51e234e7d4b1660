package pipeline

import (
	"anuncios/internal"
)

// Assemble combines a closed listing block, the header context snapshot it
// was opened under, and its surviving price candidates into the terminal
// ParsedListing. Header inheritance was already resolved at segmentation
// time; this only copies and flags.
func (p *Processor) Assemble(block internal.Block, candidates []internal.PriceCandidate, scanFlags []string) internal.ParsedListing {
	flags := make([]string, 0, len(block.QCFlags)+len(scanFlags)+1)
	for _, f := range block.QCFlags {
		flags = appendFlag(flags, f)
	}
	for _, f := range scanFlags {
		flags = appendFlag(flags, f)
	}

	if len(candidates) == 0 {
		flags = appendFlag(flags, internal.QCNoPriceFound)
	}

	return internal.ParsedListing{
		LineNo:  block.StartLine,
		RawText: block.Text(),
		Header:  block.Header,
		Prices:  candidates,
		QCFlags: flags,
	}
}

func appendFlag(flags []string, name string) []string {
	for _, f := range flags {
		if f == name {
			return flags
		}
	}
	return append(flags, name)
}
