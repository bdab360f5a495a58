package cscutil

import "encoding/hex"

// Memo is the decoded form of an on-ledger memo attached to a transaction.
type Memo struct {
	MemoType   string `json:"memoType,omitempty"`
	MemoFormat string `json:"memoFormat,omitempty"`
	MemoData   string `json:"memoData,omitempty"`
}

// RawMemo carries the hex encoded memo fields as they appear on the wire.
type RawMemo struct {
	MemoType   string
	MemoFormat string
	MemoData   string
}

// DecodeMemos converts wire memos to their human readable form. Fields that
// are not valid hex are kept verbatim.
func DecodeMemos(raw []RawMemo) []Memo {
	if len(raw) == 0 {
		return nil
	}
	memos := make([]Memo, 0, len(raw))
	for _, m := range raw {
		memos = append(memos, Memo{
			MemoType:   hexToString(m.MemoType),
			MemoFormat: hexToString(m.MemoFormat),
			MemoData:   hexToString(m.MemoData),
		})
	}
	return memos
}

func hexToString(h string) string {
	if h == "" {
		return ""
	}
	buf, err := hex.DecodeString(h)
	if err != nil {
		return h
	}
	return string(buf)
}
