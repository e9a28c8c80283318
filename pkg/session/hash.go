package session

import (
	"encoding/json"
	"hash/crc32"
	"strconv"
)

// Digest binds the session content to its id. It returns the decimal form of
// the signed CRC-32 over the canonical JSON encoding followed by the id.
//
// The checksum only catches corruption and naive edits; the cookie signature
// is what actually protects the value.
func Digest(s *Session, id string) (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	data = append(data, id...)
	return strconv.FormatInt(int64(int32(crc32.ChecksumIEEE(data))), 10), nil
}
