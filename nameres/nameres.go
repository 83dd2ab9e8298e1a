// Copyright 2017 Weald Technology Trading
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package nameres

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
	"golang.org/x/net/idna"
)

// Name normalization and hashing for ENS-style domain names, plus the
// recipient-input classification helpers used by the send flow.

var p = idna.New(idna.MapForLookup(), idna.StrictDomainName(false), idna.Transitional(false))

var labelExpr = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)

// IsValidName reports whether the input looks like a resolvable domain name:
// at least two normalized labels, each alphanumeric with interior hyphens.
func IsValidName(input string) bool {
	normalized, err := Normalize(input)
	if err != nil {
		return false
	}
	labels := strings.Split(normalized, ".")
	if len(labels) < 2 {
		return false
	}
	for _, label := range labels {
		if !labelExpr.MatchString(label) {
			return false
		}
	}
	return true
}

// IsBurnAddress reports whether the address is one of the well known burn
// addresses that sends must never target.
func IsBurnAddress(address string) bool {
	if !common.IsHexAddress(address) {
		return false
	}
	addr := common.HexToAddress(address)
	zero := common.Address{}
	dead := common.HexToAddress("0x000000000000000000000000000000000000dEaD")
	return addr == zero || addr == dead
}

// Normalize normalizes a name according to the ENS rules
func Normalize(input string) (output string, err error) {
	output, err = p.ToUnicode(input)
	if err != nil {
		return
	}
	// If the name started with a period then ToUnicode() removes it, but we want to keep it
	if strings.HasPrefix(input, ".") && !strings.HasPrefix(output, ".") {
		output = "." + output
	}
	return
}

// NameHash generates a hash from a name that can be used to
// look up the name in ENS
func NameHash(name string) (hash [32]byte, err error) {
	if name == "" {
		return
	}
	normalizedName, err := Normalize(name)
	if err != nil {
		return
	}
	parts := strings.Split(normalizedName, ".")
	for i := len(parts) - 1; i >= 0; i-- {
		if hash, err = nameHashPart(hash, parts[i]); err != nil {
			return
		}
	}
	return
}

func nameHashPart(currentHash [32]byte, name string) (hash [32]byte, err error) {
	sha := sha3.NewLegacyKeccak256()
	if _, err = sha.Write(currentHash[:]); err != nil {
		return
	}
	nameSha := sha3.NewLegacyKeccak256()
	if _, err = nameSha.Write([]byte(name)); err != nil {
		return
	}
	nameHash := nameSha.Sum(nil)
	if _, err = sha.Write(nameHash); err != nil {
		return
	}
	sha.Sum(hash[:0])
	return
}

// HashHex returns the namehash as a 0x-prefixed hex string.
func HashHex(name string) (string, error) {
	hash, err := NameHash(name)
	if err != nil {
		return "", fmt.Errorf("nameres: failed to hash %q: %w", name, err)
	}
	return "0x" + fmt.Sprintf("%x", hash), nil
}
