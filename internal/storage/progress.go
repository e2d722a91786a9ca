package storage

import "io"

// ProgressReader reports how much of a known-size stream has been read, as an
// integer percentage. The callback fires only when the percentage changes.
type ProgressReader struct {
	r        io.Reader
	total    int64
	read     int64
	last     int
	onChange func(percent int)
}

// NewProgressReader wraps r. total <= 0 means the size is unknown and progress
// jumps to 100 at EOF.
func NewProgressReader(r io.Reader, total int64, onChange func(percent int)) *ProgressReader {
	return &ProgressReader{r: r, total: total, last: -1, onChange: onChange}
}

func (p *ProgressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.read += int64(n)

	percent := p.last
	switch {
	case err == io.EOF:
		percent = 100
	case p.total > 0:
		percent = int(p.read * 100 / p.total)
		if percent > 100 {
			percent = 100
		}
	}
	if percent != p.last && percent >= 0 {
		p.last = percent
		if p.onChange != nil {
			p.onChange(percent)
		}
	}
	return n, err
}
