package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// UnmarshalJSON decodes the raw candidate-commit shape, where method_changes
// is a nested object keyed by commit hash and then by file path. A plain map
// decode would lose document order, and candidate iteration order is what
// breaks similarity-score ties, so the nested object is walked token by token.
func (c *CommitRecord) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	if err := expectDelim(dec, '{'); err != nil {
		return fmt.Errorf("commit record: %w", err)
	}

	for dec.More() {
		key, err := stringToken(dec)
		if err != nil {
			return fmt.Errorf("commit record key: %w", err)
		}

		switch key {
		case "commit":
			err = dec.Decode(&c.Commit)
		case "previous_commit":
			err = dec.Decode(&c.PreviousCommit)
		case "commit_message":
			err = dec.Decode(&c.Message)
		case "method_changes":
			c.Changes, err = decodeChangeSets(dec)
		default:
			var skip json.RawMessage
			err = dec.Decode(&skip)
		}
		if err != nil {
			return fmt.Errorf("commit record field %q: %w", key, err)
		}
	}

	return expectDelim(dec, '}')
}

func decodeChangeSets(dec *json.Decoder) ([]ChangeSet, error) {
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}

	var sets []ChangeSet
	for dec.More() {
		hash, err := stringToken(dec)
		if err != nil {
			return nil, err
		}

		cs := ChangeSet{AtCommit: hash}
		if err := expectDelim(dec, '{'); err != nil {
			return nil, err
		}
		for dec.More() {
			path, err := stringToken(dec)
			if err != nil {
				return nil, err
			}
			var methods []string
			if err := dec.Decode(&methods); err != nil {
				return nil, fmt.Errorf("methods for %s: %w", path, err)
			}
			cs.Entries = append(cs.Entries, FileChange{Path: path, Methods: methods})
		}
		if err := expectDelim(dec, '}'); err != nil {
			return nil, err
		}

		sets = append(sets, cs)
	}

	return sets, expectDelim(dec, '}')
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

func stringToken(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	s, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("expected string key, got %v", tok)
	}
	return s, nil
}
