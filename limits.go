package pptx

type Limits struct {
	MaxSlides       int
	MaxDeckTitleLen int    // bytes
	MaxTitleLen     int    // bytes, per slide
	MaxBodyLen      int    // bytes, per slide
	MaxImageBytes   uint64 // per image, after the source is read
}

func defaultLimits() Limits {
	return Limits{
		MaxSlides:       1_000,
		MaxDeckTitleLen: 4 << 10,  // 4 KiB
		MaxTitleLen:     4 << 10,  // 4 KiB
		MaxBodyLen:      64 << 10, // 64 KiB
		MaxImageBytes:   64 << 20, // 64 MiB
	}
}

func (l Limits) withDefaults() Limits {
	d := defaultLimits()
	if l.MaxSlides == 0 {
		l.MaxSlides = d.MaxSlides
	}
	if l.MaxDeckTitleLen == 0 {
		l.MaxDeckTitleLen = d.MaxDeckTitleLen
	}
	if l.MaxTitleLen == 0 {
		l.MaxTitleLen = d.MaxTitleLen
	}
	if l.MaxBodyLen == 0 {
		l.MaxBodyLen = d.MaxBodyLen
	}
	if l.MaxImageBytes == 0 {
		l.MaxImageBytes = d.MaxImageBytes
	}
	return l
}
