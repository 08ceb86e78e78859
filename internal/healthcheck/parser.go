package healthcheck

// Parser is the incremental HTTP/1.x response recognizer driving the
// probe state machine. It consumes one byte at a time, never backtracks,
// and is a pure function of (state, byte) -> (state, outcome) — it
// performs no I/O and is fully exercised by feeding it byte slices in any
// chunking, which is what the chunk-invariance tests in parser_test.go do.
//
// A Parser must be reset (via Reset) before each probe; reusing one across
// probes without resetting would carry body_match_pos and stat_code forward.
type Parser struct {
	state        ProbeState
	statCode     int
	expected     []byte
	bodyMatchPos int
}

// NewParser creates a parser that will validate a response body against
// expected. A nil or empty expected means "any body is accepted" (the
// HeaderAlmostDone state transitions straight to OK instead of entering
// ReadingBody).
func NewParser(expected []byte) *Parser {
	p := &Parser{expected: expected}
	p.Reset()
	return p
}

// Reset rewinds the parser to its initial state, ready for a new probe.
func (p *Parser) Reset() {
	p.state = ReadingStatusLine
	p.statCode = 0
	p.bodyMatchPos = 0
}

// State returns the parser's current state, in-progress or terminal.
func (p *Parser) State() ProbeState {
	return p.state
}

// anyBodyAccepted reports whether no literal body expectation was configured.
func (p *Parser) anyBodyAccepted() bool {
	return len(p.expected) == 0
}

// Consume feeds a single byte to the recognizer and returns the resulting
// state. Once a terminal state is reached, further calls to Consume are a
// programming error (the caller must stop invoking the parser and finish the
// probe); Consume panics in that case to surface the bug immediately rather
// than silently reprocessing bytes after a verdict was already reached.
func (p *Parser) Consume(b byte) ProbeState {
	if p.state.IsTerminal() {
		panic("healthcheck: Consume called after parser reached a terminal state")
	}

	switch p.state {
	case ReadingStatusLine:
		switch b {
		case ' ':
			p.statCode = 0
			p.state = ReadingStatusCode
		case '\r', '\n':
			p.state = BadStatus
		}

	case ReadingStatusCode:
		switch {
		case b == ' ':
			if p.statCode == 200 {
				p.state = ReadingHeader
			} else {
				p.state = BadCode
			}
		case b >= '0' && b <= '9':
			p.statCode = p.statCode*10 + int(b-'0')
		default:
			p.state = BadStatus
		}

	case ReadingHeader:
		if b == '\n' {
			p.state = HeaderAlmostDone
		}

	case HeaderAlmostDone:
		switch b {
		case '\n':
			if p.anyBodyAccepted() {
				p.state = OK
			} else {
				p.state = ReadingBody
			}
		case '\r':
			// stay
		default:
			p.state = ReadingHeader
		}

	case ReadingBody:
		// A completed match does not transition to OK here: a byte arriving
		// later in the same chunk after the match has completed means the
		// body is longer than expected, which is BadBody, not OK. The
		// transition to terminal OK happens only once the caller's current
		// chunk is exhausted with no such trailing byte; see ConsumeAll.
		if p.bodyMatchPos < len(p.expected) && b == p.expected[p.bodyMatchPos] {
			p.bodyMatchPos++
		} else {
			p.state = BadBody
		}

	default:
		// Unreachable by construction: Reset and the cases above only ever
		// leave the parser in one of the states handled above (Waiting,
		// Sending and UninitState are never parser states). If that ever
		// stops holding, the probe ends as BadState instead of silently
		// continuing.
		p.state = BadState
	}

	return p.state
}

// ConsumeAll feeds an entire byte slice through Consume, stopping as soon
// as the parser reaches a terminal state (any bytes after that point in
// buf are left unconsumed; the caller decides whether to wait for more
// bytes or stop reading). It returns the resulting state.
//
// A body match that completes inside buf is not promoted while bytes of
// buf remain: a trailing byte after the match is still consumed in
// ReadingBody and flips the parser to BadBody. Once buf is exhausted with
// the match complete, the parser is promoted to terminal OK; bytes that
// arrive in a later chunk are never inspected.
func (p *Parser) ConsumeAll(buf []byte) ProbeState {
	for _, b := range buf {
		if p.Consume(b).IsTerminal() {
			return p.state
		}
	}
	if p.state == ReadingBody && p.bodyMatchPos == len(p.expected) {
		p.state = OK
	}
	return p.state
}
