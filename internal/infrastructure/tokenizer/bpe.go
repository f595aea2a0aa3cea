package tokenizer

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"github.com/krywicki/zeroshot/internal/domain/service"
)

// Pre-tokenization pattern of the GPT-2 byte-level BPE family (BART, RoBERTa)
const bytePattern = `'s|'t|'re|'ve|'m|'ll|'d| ?\p{L}+| ?\p{N}+| ?[^\s\p{L}\p{N}]+|\s+(?!\S)|\s+`

// PairSpecialTokens is the number of special tokens BART adds around a
// sentence pair: <s> A </s></s> B </s>
const PairSpecialTokens = 4

var specialTokens = []string{"<s>", "<pad>", "</s>", "<unk>", "<mask>"}

// BPE is a byte-level BPE tokenizer built from a vocab.json / merges.txt pair.
// Merge priority follows merges.txt order; ids are the vocabulary's.
type BPE struct {
	tk        *tiktoken.Tiktoken
	rankToID  []int
	idToRank  map[int]int
	lowerCase bool
}

// LoadBPE reads a vocabulary and merges file and builds the tokenizer
func LoadBPE(vocabPath, mergesPath string, lowerCase bool) (*BPE, error) {
	vocab, err := readVocab(vocabPath)
	if err != nil {
		return nil, err
	}

	merges, err := readMerges(mergesPath)
	if err != nil {
		return nil, err
	}

	return NewBPE(vocab, merges, lowerCase)
}

// NewBPE builds the tokenizer from an in-memory vocabulary and merge list.
// Each merge is a pair of byte-encoded symbols.
func NewBPE(vocab map[string]int, merges [][2]string, lowerCase bool) (*BPE, error) {
	encoder := byteEncoder()
	decoder := make(map[rune]byte, len(encoder))
	for b, r := range encoder {
		decoder[r] = byte(b)
	}

	ranks := make(map[string]int, len(merges)+256)
	rankToID := make([]int, 0, len(merges)+256+len(specialTokens))

	for b := 0; b < 256; b++ {
		id, ok := vocab[string(encoder[b])]
		if !ok {
			return nil, fmt.Errorf("%w: vocabulary has no entry for byte 0x%02x", service.ErrModelLoad, b)
		}
		ranks[string([]byte{byte(b)})] = len(rankToID)
		rankToID = append(rankToID, id)
	}

	for _, m := range merges {
		symbol := m[0] + m[1]
		id, ok := vocab[symbol]
		if !ok {
			continue
		}
		raw, ok := decodeSymbol(symbol, decoder)
		if !ok {
			continue
		}
		if _, dup := ranks[raw]; dup {
			continue
		}
		ranks[raw] = len(rankToID)
		rankToID = append(rankToID, id)
	}

	special := make(map[string]int, len(specialTokens))
	specialSet := make(map[string]any, len(specialTokens))
	for _, tok := range specialTokens {
		id, ok := vocab[tok]
		if !ok {
			continue
		}
		special[tok] = len(rankToID)
		specialSet[tok] = nil
		rankToID = append(rankToID, id)
	}

	core, err := tiktoken.NewCoreBPE(ranks, special, bytePattern)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to build tokenizer: %v", service.ErrModelLoad, err)
	}

	encoding := &tiktoken.Encoding{
		Name:           "byte-level-bpe",
		PatStr:         bytePattern,
		MergeableRanks: ranks,
		SpecialTokens:  special,
	}

	idToRank := make(map[int]int, len(rankToID))
	for rank, id := range rankToID {
		if _, ok := idToRank[id]; !ok {
			idToRank[id] = rank
		}
	}

	return &BPE{
		tk:        tiktoken.NewTiktoken(core, encoding, specialSet),
		rankToID:  rankToID,
		idToRank:  idToRank,
		lowerCase: lowerCase,
	}, nil
}

// Normalize applies the configured casing to text
func (b *BPE) Normalize(text string) string {
	if b.lowerCase {
		return strings.ToLower(text)
	}
	return text
}

// encode returns the vocabulary ids of text, without special tokens
func (b *BPE) encode(text string) []int {
	ranks := b.tk.EncodeOrdinary(b.Normalize(text))
	ids := make([]int, len(ranks))
	for i, rank := range ranks {
		ids[i] = b.rankToID[rank]
	}
	return ids
}

// decode turns vocabulary ids back into text. Unknown ids are skipped.
func (b *BPE) decode(ids []int) string {
	ranks := make([]int, 0, len(ids))
	for _, id := range ids {
		if rank, ok := b.idToRank[id]; ok {
			ranks = append(ranks, rank)
		}
	}
	return b.tk.Decode(ranks)
}

// TruncatePair fits a premise/hypothesis pair into maxLength tokens. Tokens
// are dropped one at a time from the end of the longer text, the hypothesis
// on a tie. Both returned texts are normalized.
func (b *BPE) TruncatePair(premise, hypothesis string, maxLength int) (string, string, error) {
	budget := maxLength - PairSpecialTokens
	if budget < 0 {
		return "", "", fmt.Errorf("%w: max length %d leaves no room for %d special tokens", service.ErrInputTooLong, maxLength, PairSpecialTokens)
	}

	premise, hypothesis = b.Normalize(premise), b.Normalize(hypothesis)
	p := b.encode(premise)
	h := b.encode(hypothesis)

	np, nh := LongestFirst(len(p), len(h), budget)
	if np < len(p) {
		premise = b.decode(p[:np])
	}
	if nh < len(h) {
		hypothesis = b.decode(h[:nh])
	}
	return premise, hypothesis, nil
}

// LongestFirst returns the lengths two sequences are cut to so that they
// fit in budget together, shortening the longer one first.
func LongestFirst(first, second, budget int) (int, int) {
	for first+second > budget {
		if first > second {
			first--
		} else {
			second--
		}
	}
	return first, second
}

func readVocab(path string) (map[string]int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read vocabulary: %v", service.ErrModelLoad, err)
	}

	var vocab map[string]int
	if err := json.Unmarshal(data, &vocab); err != nil {
		return nil, fmt.Errorf("%w: failed to parse vocabulary %s: %v", service.ErrModelLoad, path, err)
	}
	return vocab, nil
}

func readMerges(path string) ([][2]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read merges: %v", service.ErrModelLoad, err)
	}
	defer f.Close()

	var merges [][2]string
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r")
		if text == "" || (line == 1 && strings.HasPrefix(text, "#version")) {
			continue
		}
		parts := strings.Split(text, " ")
		if len(parts) != 2 {
			return nil, fmt.Errorf("%w: malformed merge on line %d of %s", service.ErrModelLoad, line, path)
		}
		merges = append(merges, [2]string{parts[0], parts[1]})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to read merges: %v", service.ErrModelLoad, err)
	}
	return merges, nil
}

// byteEncoder maps every byte to the printable rune GPT-2 vocabularies use for it
func byteEncoder() [256]rune {
	var table [256]rune
	printable := func(b int) bool {
		return (b >= '!' && b <= '~') || (b >= 0xA1 && b <= 0xAC) || (b >= 0xAE && b <= 0xFF)
	}
	n := 0
	for b := 0; b < 256; b++ {
		if printable(b) {
			table[b] = rune(b)
			continue
		}
		table[b] = rune(256 + n)
		n++
	}
	return table
}

func decodeSymbol(symbol string, decoder map[rune]byte) (string, bool) {
	raw := make([]byte, 0, len(symbol))
	for _, r := range symbol {
		b, ok := decoder[r]
		if !ok {
			return "", false
		}
		raw = append(raw, b)
	}
	return string(raw), true
}
