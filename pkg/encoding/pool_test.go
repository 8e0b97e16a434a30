package encoding

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetBuffer_IsEmpty(t *testing.T) {
	buf := GetBuffer()
	buf.WriteString("<CreditCardSale/>")
	PutBuffer(buf)

	again := GetBuffer()
	defer PutBuffer(again)
	assert.Equal(t, 0, again.Len())
}

func TestCopyBytes_SurvivesReuse(t *testing.T) {
	buf := GetBuffer()
	buf.WriteString("abc")
	out := CopyBytes(buf)
	PutBuffer(buf)

	reused := GetBuffer()
	reused.WriteString("xyz")
	defer PutBuffer(reused)

	assert.Equal(t, []byte("abc"), out)
}

func TestPutBuffer_DropsLargeBuffers(t *testing.T) {
	large := bytes.NewBuffer(make([]byte, 0, 128*1024))
	assert.NotPanics(t, func() { PutBuffer(large) })
}
