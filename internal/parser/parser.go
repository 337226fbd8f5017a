package parser

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/conorfennell/kapp/internal/domain"
)

const (
	koreanPrefix       = "K:"
	englishPrefix      = "E:"
	romanizationPrefix = "R:"
	levelPrefix        = "L:"
	notesPrefix        = "N:"

	separator = "---"

	minLevel = 1
	maxLevel = 5
)

type state int

const (
	seeking state = iota
	readingKorean
	readingEnglish
	readingRomanization
	readingLevel
	readingNotes
)

var prefixes = []struct {
	prefix string
	state  state
}{
	{koreanPrefix, readingKorean},
	{englishPrefix, readingEnglish},
	{romanizationPrefix, readingRomanization},
	{levelPrefix, readingLevel},
	{notesPrefix, readingNotes},
}

// DeckName derives a deck's name from its file path.
func DeckName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ParseFile reads a file from the given path and extracts all cards.
func ParseFile(path string) ([]domain.Card, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads from an io.Reader and extracts all cards. Cards without a
// Korean side are dropped.
func Parse(r io.Reader) ([]domain.Card, error) {
	scanner := bufio.NewScanner(r)
	var cards []domain.Card
	var currentCard domain.Card
	var currentBlock []string
	currentState := seeking

	flushBlock := func() {
		if len(currentBlock) == 0 {
			return
		}
		content := strings.TrimSpace(strings.Join(currentBlock, "\n"))
		switch currentState {
		case readingKorean:
			currentCard.Korean = content
		case readingEnglish:
			currentCard.English = content
		case readingRomanization:
			currentCard.Romanization = content
		case readingLevel:
			currentCard.Level = parseLevel(content)
		case readingNotes:
			currentCard.Notes = content
		}
		currentBlock = nil
	}

	finishCard := func() {
		flushBlock()
		if currentCard.Korean != "" {
			cards = append(cards, currentCard)
		}
		currentCard = domain.Card{}
		currentState = seeking
	}

	for scanner.Scan() {
		line := scanner.Text()

		if strings.TrimSpace(line) == separator {
			finishCard()
			continue
		}

		next, content, ok := fieldLine(line)
		if !ok {
			if currentState != seeking {
				currentBlock = append(currentBlock, line)
			}
			continue
		}

		flushBlock()
		if next == readingKorean && currentState != seeking {
			// A new Korean line always starts a new card
			finishCard()
		}
		currentState = next
		currentBlock = append(currentBlock, content)
	}

	finishCard() // Finish the very last card in the file

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return cards, nil
}

func fieldLine(line string) (state, string, bool) {
	for _, p := range prefixes {
		if strings.HasPrefix(line, p.prefix) {
			content := line[len(p.prefix):]
			content = strings.TrimPrefix(content, " ")
			return p.state, content, true
		}
	}
	return seeking, "", false
}

// parseLevel reads a level, clamped to [1,5]. Anything unreadable is level 1.
func parseLevel(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < minLevel {
		return minLevel
	}
	if n > maxLevel {
		return maxLevel
	}
	return n
}
