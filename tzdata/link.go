package tzdata

import "fmt"

// LinkRecord declares an alternative name (To) for a zone or another link's
// name (From). Chains are allowed when the intermediate link appears
// earlier in the source; tzcompile points every link directly at the true
// zone at the end of its chain.
type LinkRecord struct {
	From string
	To   string
}

func parseLinkLine(parts []string) (LinkRecord, error) {
	if len(parts) != 3 {
		return LinkRecord{}, fmt.Errorf("expected 3 fields, got %d", len(parts))
	}
	if parts[0] != "Link" {
		return LinkRecord{}, fmt.Errorf("expected 'Link', got %q", parts[0])
	}
	return LinkRecord{From: parts[1], To: parts[2]}, nil
}
