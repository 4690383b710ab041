// Package decklist reduces a decklist to classifier features and resolves its
// identity and side from card metadata.
package decklist

import (
	"sort"

	"github.com/pable/nrstats/internal/classifier"
	"github.com/pable/nrstats/internal/model"
)

// CardIndex looks up card metadata by card code.
type CardIndex map[string]model.Card

// NewCardIndex indexes cards by code.
func NewCardIndex(cards []model.Card) CardIndex {
	idx := make(CardIndex, len(cards))
	for _, c := range cards {
		idx[c.Code] = c
	}
	return idx
}

// Features maps every card in the deck to its copy count.
func Features(deck model.Decklist) classifier.FeatureVector {
	fv := make(classifier.FeatureVector, len(deck.Cards))
	for code, n := range deck.Cards {
		if n == 0 {
			continue
		}
		fv[code] = float64(n)
	}
	return fv
}

// Identity returns the deck's identity card. When more than one identity-type
// card is present the entries are sorted by title, then code, and the first
// one wins.
func Identity(deck model.Decklist, cards CardIndex) (model.Card, bool) {
	var ids []model.Card
	for code, n := range deck.Cards {
		c, ok := cards[code]
		if !ok || n == 0 || !c.IsIdentity() {
			continue
		}
		ids = append(ids, c)
	}
	if len(ids) == 0 {
		return model.Card{}, false
	}
	sort.Slice(ids, func(i, j int) bool {
		if ids[i].Title != ids[j].Title {
			return ids[i].Title < ids[j].Title
		}
		return ids[i].Code < ids[j].Code
	})
	return ids[0], true
}

// Side resolves the deck's side from its identity, or failing that from the
// side most of its known cards belong to. Ties and decks with no known cards
// are unresolved.
func Side(deck model.Decklist, cards CardIndex) (model.Side, bool) {
	if id, ok := Identity(deck, cards); ok {
		if s, ok := model.ParseSide(id.SideCode); ok {
			return s, true
		}
	}
	var corp, runner int
	for code, n := range deck.Cards {
		c, ok := cards[code]
		if !ok {
			continue
		}
		switch s, _ := model.ParseSide(c.SideCode); s {
		case model.SideCorp:
			corp += n
		case model.SideRunner:
			runner += n
		}
	}
	switch {
	case corp > runner:
		return model.SideCorp, true
	case runner > corp:
		return model.SideRunner, true
	default:
		return "", false
	}
}

// Label is the classifier label for a side: corp is the positive class.
func Label(side model.Side) bool {
	return side == model.SideCorp
}

// SideOf turns a classifier probability back into a side.
func SideOf(p float64) model.Side {
	if p >= 0.5 {
		return model.SideCorp
	}
	return model.SideRunner
}
