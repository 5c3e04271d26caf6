package forms

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/chrisuehlinger/swipekit/dom"
)

// CardType is a payment card network.
type CardType string

const (
	CardUnknown    CardType = ""
	CardVisa       CardType = "visa"
	CardMastercard CardType = "mastercard"
	CardAmex       CardType = "amex"
	CardDiscover   CardType = "discover"
	CardDiners     CardType = "diners"
	CardJCB        CardType = "jcb"
)

var cardPatterns = []struct {
	typ CardType
	re  *regexp.Regexp
}{
	{CardVisa, regexp.MustCompile(`^4`)},
	{CardMastercard, regexp.MustCompile(`^(5[1-5]|2[2-7])`)},
	{CardAmex, regexp.MustCompile(`^3[47]`)},
	{CardDiscover, regexp.MustCompile(`^6(011|5)`)},
	{CardJCB, regexp.MustCompile(`^35`)},
	{CardDiners, regexp.MustCompile(`^3(0[0-5]|[68])`)},
}

// minCardDigits is the shortest number validated with Luhn.
const minCardDigits = 12

// DetectCard returns the card network of a number. Non-digits are ignored.
func DetectCard(number string) CardType {
	d := digits(number)
	for _, p := range cardPatterns {
		if p.re.MatchString(d) {
			return p.typ
		}
	}
	return CardUnknown
}

// Luhn reports whether the digits of number pass the Luhn checksum.
func Luhn(number string) bool {
	d := digits(number)
	if d == "" {
		return false
	}
	sum := 0
	double := false
	for i := len(d) - 1; i >= 0; i-- {
		n := int(d[i] - '0')
		if double {
			n *= 2
			if n > 9 {
				n -= 9
			}
		}
		sum += n
		double = !double
	}
	return sum%10 == 0
}

// CardDetect marks a card number field with its detected network and
// checksum validity.
type CardDetect struct {
	base
	input *dom.Element
	card  CardType
}

// NewCardDetect enhances root, which is an input or contains one.
func NewCardDetect(root *dom.Element, opts ...Option) (*CardDetect, error) {
	s := newSettings(root, CardDetectType, opts)
	input := findInput(root, "input")
	if input == nil {
		return nil, fmt.Errorf("%s %d: %w", CardDetectType, s.id, ErrNoInput)
	}
	w := &CardDetect{
		base:  base{id: s.id, typ: CardDetectType, root: root, logger: s.logger},
		input: input,
	}
	w.on(input, "input keyup change", func(*dom.Event) { w.update() })
	w.update()
	return w, nil
}

func (w *CardDetect) update() {
	number := digits(Value(w.input))
	w.card = DetectCard(number)
	w.root.SetAttribute("data-ss-card-type", string(w.card))
	for _, icon := range w.root.QuerySelectorAll("[data-ss-component=card][data-ss-card-type]") {
		if w.card != CardUnknown && icon.GetAttribute("data-ss-card-type") == string(w.card) {
			icon.SetAttribute("data-ss-state", "active")
		} else {
			icon.SetAttribute("data-ss-state", "inactive")
		}
	}
	if len(number) >= minCardDigits {
		w.root.SetAttribute("data-ss-valid", strconv.FormatBool(Luhn(number)))
	} else {
		w.root.RemoveAttribute("data-ss-valid")
	}
}

// Card returns the detected network.
func (w *CardDetect) Card() CardType { return w.card }

// Destroy detaches listeners.
func (w *CardDetect) Destroy() {
	if w.teardown() {
		w.root.RemoveAttribute("data-ss-card-type")
		w.root.RemoveAttribute("data-ss-valid")
	}
}
