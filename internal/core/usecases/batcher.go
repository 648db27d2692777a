package usecases

import "github.com/marinewx/seatemp/internal/core/domain"

// batcher turns raw cursor records into bounded, de-duplicated batches.
// It buffers at most one batch.
type batcher struct {
	size int
	emit func(domain.SeaTemperatureBatch) error
	seen map[domain.CoordinateKey]struct{}
	buf  domain.SeaTemperatureBatch
}

func newBatcher(size int, emit func(domain.SeaTemperatureBatch) error) *batcher {
	if size <= 0 {
		size = domain.DefaultBatchSize
	}
	return &batcher{
		size: size,
		emit: emit,
		seen: make(map[domain.CoordinateKey]struct{}),
		buf:  make(domain.SeaTemperatureBatch, 0, size),
	}
}

// add drops records without a measurement and repeated coordinates (first
// wins), then emits as soon as a batch is full.
func (b *batcher) add(rec domain.RawRecord) error {
	if rec.SeaSurfaceTemperature == nil {
		return nil
	}
	key := domain.CoordinateKey{Longitude: rec.Longitude, Latitude: rec.Latitude}
	if _, dup := b.seen[key]; dup {
		return nil
	}
	b.seen[key] = struct{}{}

	b.buf = append(b.buf, domain.SeaTemperature{
		Lon:  rec.Longitude,
		Lat:  rec.Latitude,
		Temp: *rec.SeaSurfaceTemperature,
	})
	if len(b.buf) < b.size {
		return nil
	}
	return b.send()
}

// flush emits the non-empty remainder.
func (b *batcher) flush() error {
	if len(b.buf) == 0 {
		return nil
	}
	return b.send()
}

func (b *batcher) send() error {
	out := b.buf
	b.buf = make(domain.SeaTemperatureBatch, 0, b.size)
	return b.emit(out)
}
