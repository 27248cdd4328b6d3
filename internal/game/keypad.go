package game

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Keypad keys besides the digits.
const (
	KeyDoubleZero = "00"
	KeyDecimal    = ","
	KeyBackspace  = "<"
)

var ErrUnknownKey = errors.New("unknown keypad key")

// Keypad is the numeric entry buffer of the payment terminal. It always holds
// a well-formed non-negative amount, starting at "0".
type Keypad struct {
	buf string
}

func (k *Keypad) Display() string {
	if k.buf == "" {
		return "0"
	}
	return strings.ReplaceAll(k.buf, ".", ",")
}

// Press applies a single key.
func (k *Keypad) Press(key string) error {
	if k.buf == "" {
		k.buf = "0"
	}
	switch key {
	case KeyBackspace:
		if len(k.buf) > 1 {
			k.buf = k.buf[:len(k.buf)-1]
		} else {
			k.buf = "0"
		}
	case KeyDecimal, ".":
		if !strings.Contains(k.buf, ".") {
			k.buf += "."
		}
	case KeyDoubleZero:
		if k.buf != "0" {
			k.buf += KeyDoubleZero
		}
	default:
		if len(key) != 1 || key[0] < '0' || key[0] > '9' {
			return fmt.Errorf("%w: %q", ErrUnknownKey, key)
		}
		if k.buf == "0" {
			k.buf = key
		} else {
			k.buf += key
		}
	}
	return nil
}

// PressAll applies keys in order. If any key is rejected the buffer is left as
// it was before the call.
func (k *Keypad) PressAll(keys ...string) error {
	next := *k
	for _, key := range keys {
		if err := next.Press(key); err != nil {
			return err
		}
	}
	*k = next
	return nil
}

// Value parses the buffer. A trailing separator reads as no fraction.
func (k *Keypad) Value() decimal.Decimal {
	v, err := decimal.NewFromString(strings.TrimSuffix(k.buf, "."))
	if err != nil {
		return decimal.Zero
	}
	return v
}

// Confirm returns the entered amount and resets the display to "0".
func (k *Keypad) Confirm() decimal.Decimal {
	v := k.Value()
	k.Reset()
	return v
}

func (k *Keypad) Reset() { k.buf = "0" }
