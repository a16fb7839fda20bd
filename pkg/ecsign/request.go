package ecsign

import (
	"crypto/sha256"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Supported HashMessage algorithms.
const (
	HashSHA256    = "sha256"
	HashKeccak256 = "keccak256"
)

// SignRequest is one message hash to sign.
type SignRequest struct {
	ID   string // Caller supplied identifier, echoed in results
	Hash []byte // Message hash
}

// RequestParser defines the interface for loading signing requests from
// various sources.
type RequestParser interface {
	// ParseRequests parses requests from a source and returns them.
	ParseRequests(source string) ([]*SignRequest, error)
}

// HashMessage digests message with the named algorithm.  An empty name
// selects SHA-256.
func HashMessage(algorithm string, message []byte) ([]byte, error) {
	switch strings.ToLower(algorithm) {
	case "", HashSHA256:
		h := sha256.Sum256(message)
		return h[:], nil
	case HashKeccak256:
		h := sha3.NewLegacyKeccak256()
		h.Write(message)
		return h.Sum(nil), nil
	default:
		return nil, fmt.Errorf("unsupported hash algorithm %q", algorithm)
	}
}

// parseHashField decodes a hex hash, with or without a 0x prefix.
func parseHashField(s string) ([]byte, error) {
	s = strings.TrimPrefix(s, "0x")
	s = strings.TrimPrefix(s, "0X")
	hash, err := HexToBytes(s)
	if err != nil {
		return nil, err
	}
	if len(hash) == 0 {
		return nil, makeError(ErrInvalidMessageHash, "empty hash field")
	}
	return hash, nil
}

// JSONParser parses signing requests from JSON files.
type JSONParser struct {
	IDField      string // Field name for the id (default: "id")
	HashField    string // Field name for a hex hash (default: "hash")
	MessageField string // Field name for a raw message (default: "message")
	HashFunc     string // Algorithm for hashing messages (default: sha256)
}

// ParseRequests parses signing requests from a JSON file.
//
// Expected format:
//
//	[
//	  {"id": "a", "hash": "0x..."},
//	  {"id": "b", "message": "..."}
//	]
func (p *JSONParser) ParseRequests(jsonFile string) ([]*SignRequest, error) {
	file, err := os.Open(jsonFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	defer file.Close()

	return p.parse(file)
}

func (p *JSONParser) parse(r io.Reader) ([]*SignRequest, error) {
	decoder := json.NewDecoder(r)
	decoder.UseNumber() // ids may be numbers

	var items []map[string]interface{}
	if err := decoder.Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	idField := p.IDField
	if idField == "" {
		idField = "id"
	}
	hashField := p.HashField
	if hashField == "" {
		hashField = "hash"
	}
	messageField := p.MessageField
	if messageField == "" {
		messageField = "message"
	}

	requests := make([]*SignRequest, 0, len(items))
	for i, item := range items {
		var err error
		req := &SignRequest{ID: fmt.Sprint(i)}
		if idVal, ok := item[idField]; ok {
			req.ID = fmt.Sprint(idVal)
		}

		if hashVal, ok := item[hashField]; ok {
			s, ok := hashVal.(string)
			if !ok {
				return nil, fmt.Errorf("request %s: hash field must be a hex string", req.ID)
			}
			req.Hash, err = parseHashField(s)
			if err != nil {
				return nil, fmt.Errorf("request %s: failed to parse hash: %w", req.ID, err)
			}
		} else if msgVal, ok := item[messageField]; ok {
			message, ok := msgVal.(string)
			if !ok {
				return nil, fmt.Errorf("request %s: message field must be a string", req.ID)
			}
			req.Hash, err = HashMessage(p.HashFunc, []byte(message))
			if err != nil {
				return nil, fmt.Errorf("request %s: %w", req.ID, err)
			}
		} else {
			return nil, fmt.Errorf("request %s: missing hash or message field", req.ID)
		}

		requests = append(requests, req)
	}

	return requests, nil
}

// CSVParser parses signing requests from CSV files.
type CSVParser struct {
	IDCol      string // Column name for the id (default: "id")
	HashCol    string // Column name for a hex hash (default: "hash")
	MessageCol string // Column name for a raw message (default: "message")
	HashFunc   string // Algorithm for hashing messages (default: sha256)
}

// ParseRequests parses signing requests from a CSV file with a header row.
func (p *CSVParser) ParseRequests(csvFile string) ([]*SignRequest, error) {
	file, err := os.Open(csvFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return p.parse(file)
}

func (p *CSVParser) parse(r io.Reader) ([]*SignRequest, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	idCol := p.IDCol
	if idCol == "" {
		idCol = "id"
	}
	hashCol := p.HashCol
	if hashCol == "" {
		hashCol = "hash"
	}
	messageCol := p.MessageCol
	if messageCol == "" {
		messageCol = "message"
	}

	idIdx, hashIdx, messageIdx := -1, -1, -1
	for i, col := range header {
		switch col {
		case idCol:
			idIdx = i
		case hashCol:
			hashIdx = i
		case messageCol:
			messageIdx = i
		}
	}

	if hashIdx == -1 && messageIdx == -1 {
		return nil, fmt.Errorf("missing required columns: %s or %s", hashCol, messageCol)
	}

	requests := make([]*SignRequest, 0)
	for row := 0; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}

		req := &SignRequest{ID: fmt.Sprint(row)}
		if idIdx >= 0 && idIdx < len(record) && record[idIdx] != "" {
			req.ID = record[idIdx]
		}

		switch {
		case hashIdx >= 0 && hashIdx < len(record) && record[hashIdx] != "":
			req.Hash, err = parseHashField(record[hashIdx])
			if err != nil {
				return nil, fmt.Errorf("request %s: failed to parse hash: %w", req.ID, err)
			}
		case messageIdx >= 0 && messageIdx < len(record):
			req.Hash, err = HashMessage(p.HashFunc, []byte(record[messageIdx]))
			if err != nil {
				return nil, fmt.Errorf("request %s: %w", req.ID, err)
			}
		default:
			return nil, fmt.Errorf("request %s: missing hash or message column", req.ID)
		}

		requests = append(requests, req)
	}

	return requests, nil
}
