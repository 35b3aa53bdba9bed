package rule

const (
	CR   byte = '\r'
	LF   byte = '\n'
	SP   byte = ' '
	HTAB byte = '\t'
	NUL  byte = 0x00
	DEL  byte = 0x7F
)

var (
	OWS  = []byte{SP, HTAB}
	CRLF = []byte{CR, LF}
)
