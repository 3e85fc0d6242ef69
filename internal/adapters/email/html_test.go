package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTMLToText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain text", "just words", "just words"},
		{"paragraphs", "<p>one</p><p>two</p>", "one\ntwo"},
		{"inline elements", "<p>Total <b>5</b> <i>EUR</i></p>", "Total 5 EUR"},
		{"scripts and styles dropped", "<head><title>t</title></head><script>x()</script><style>p{}</style><div>kept</div>", "kept"},
		{"line breaks", "a<br>b<br/>c", "a\nb\nc"},
		{"table rows", "<table><tr><td>Item</td><td>9.00</td></tr><tr><td>Tax</td><td>1.00</td></tr></table>", "Item 9.00\nTax 1.00"},
		{"whitespace collapsed", "<p>  lots   of\n\n space  </p>", "lots of space"},
		{"malformed", "<div><p>open<div>still here", "open\nstill here"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTMLToText(tt.in))
		})
	}
}
