package curve

import (
	"fmt"
	"math/big"
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/sync/singleflight"

	"github.com/mahdiidarabi/ecsign/internal/ecerr"
	"github.com/mahdiidarabi/ecsign/internal/field"
)

// halfScalarBits is the bit length of each half produced by SplitScalar.
const halfScalarBits = 128

// DefaultCacheSize is the number of precomputed tables kept by
// DefaultMultiplier.
const DefaultCacheSize = 32

// DefaultMultiplier is the process-wide multiplier used by AffinePoint.Multiply.
var DefaultMultiplier = mustNewMultiplier(DefaultCacheSize)

// tableKey identifies a precomputed table by point content and window width,
// so tables survive copies of the point value.
type tableKey struct {
	handle string
	window int
}

// Multiplier performs windowed NAF scalar multiplication and owns the cache of
// precomputed tables.  It is safe for concurrent use.
type Multiplier struct {
	mu      sync.RWMutex
	windows map[string]int

	tables *lru.Cache
	builds singleflight.Group
}

// NewMultiplier returns a multiplier that keeps at most cacheSize precomputed
// tables.
func NewMultiplier(cacheSize int) (*Multiplier, error) {
	tables, err := lru.New(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create precompute cache: %w", err)
	}
	return &Multiplier{
		windows: make(map[string]int),
		tables:  tables,
	}, nil
}

func mustNewMultiplier(cacheSize int) *Multiplier {
	m, err := NewMultiplier(cacheSize)
	if err != nil {
		panic(err)
	}
	return m
}

func pointHandle(p AffinePoint) string {
	return p.X.Text(16) + ":" + p.Y.Text(16)
}

// ValidateWindowSize returns an error unless w is 1, 2, 4, 8 or 16.
func ValidateWindowSize(w int) error {
	switch w {
	case 1, 2, 4, 8, 16:
		return nil
	}
	return ecerr.New(ecerr.ErrInvalidWindowSize,
		fmt.Sprintf("invalid precomputation window %d, must be a power of 2 in [1, 16]", w))
}

// SetWindowSize configures the window width used when multiplying p.  Wider
// windows trade memory for speed on repeated multiplications against the same
// point.  Changing the width drops the table cached for the previous width.
func (m *Multiplier) SetWindowSize(p AffinePoint, w int) error {
	if err := ValidateWindowSize(w); err != nil {
		return err
	}

	handle := pointHandle(p)
	m.mu.Lock()
	prev, ok := m.windows[handle]
	m.windows[handle] = w
	m.mu.Unlock()

	if ok && prev != w {
		m.tables.Remove(tableKey{handle: handle, window: prev})
	}
	return nil
}

// WindowSize returns the window width configured for p, 1 by default.
func (m *Multiplier) WindowSize(p AffinePoint) int {
	return m.windowSize(pointHandle(p))
}

func (m *Multiplier) windowSize(handle string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if w, ok := m.windows[handle]; ok {
		return w
	}
	return 1
}

// IsCached returns whether a table for p at its current window width is held
// in the cache.
func (m *Multiplier) IsCached(p AffinePoint) bool {
	handle := pointHandle(p)
	return m.tables.Contains(tableKey{handle: handle, window: m.windowSize(handle)})
}

// SetWindowSize configures the window width of p on DefaultMultiplier.
func SetWindowSize(p AffinePoint, w int) error {
	return DefaultMultiplier.SetWindowSize(p, w)
}

// precomputeWindow builds the table of multiples of p used by wnaf: for every
// window, the multiples 1..2^(w-1) of 2^(w*window) * p.
func precomputeWindow(p JacobianPoint, w int) []JacobianPoint {
	windows := halfScalarBits/w + 1
	windowSize := 1 << (w - 1)
	points := make([]JacobianPoint, 0, windows*windowSize)

	var base JacobianPoint
	for window := 0; window < windows; window++ {
		base = p
		points = append(points, base)
		for i := 1; i < windowSize; i++ {
			base = base.Add(p)
			points = append(points, base)
		}
		p = base.Double()
	}
	return points
}

// precomputes returns the table for p, building it at most once per cache
// lifetime.  Tables for w = 1 are cheap and never cached.
func (m *Multiplier) precomputes(p AffinePoint, handle string, w int) ([]JacobianPoint, error) {
	if w == 1 {
		return precomputeWindow(FromAffine(p), w), nil
	}

	key := tableKey{handle: handle, window: w}
	if cached, ok := m.tables.Get(key); ok {
		return cached.([]JacobianPoint), nil
	}

	table, err, _ := m.builds.Do(fmt.Sprintf("%s/%d", handle, w), func() (interface{}, error) {
		if cached, ok := m.tables.Get(key); ok {
			return cached, nil
		}
		table, err := NormalizeZ(precomputeWindow(FromAffine(p), w))
		if err != nil {
			return nil, err
		}
		m.tables.Add(key, table)
		return table, nil
	})
	if err != nil {
		return nil, err
	}
	return table.([]JacobianPoint), nil
}

// wnaf multiplies by n using signed windows of w bits.  Besides the result it
// returns a decoy sum that receives an addition on every zero window, so each
// window costs one point addition either way.  This is not constant time.
func wnaf(table []JacobianPoint, w int, n *big.Int) (JacobianPoint, JacobianPoint) {
	windows := halfScalarBits/w + 1
	windowSize := 1 << (w - 1)
	maxNumber := 1 << w
	mask := big.NewInt(int64(maxNumber - 1))

	p, f := jacobianZero, jacobianZero
	n = new(big.Int).Set(n)
	bits := new(big.Int)
	for window := 0; window < windows; window++ {
		offset := window * windowSize
		wbits := int(bits.And(n, mask).Int64())
		n.Rsh(n, uint(w))

		// Borrow from the next window to keep the digit in the signed range.
		if wbits > windowSize {
			wbits -= maxNumber
			n.Add(n, one)
		}

		if wbits == 0 {
			pr := table[offset]
			if window%2 == 1 {
				pr = pr.Negate()
			}
			f = f.Add(pr)
			continue
		}

		idx := wbits
		if idx < 0 {
			idx = -idx
		}
		cached := table[offset+idx-1]
		if wbits < 0 {
			cached = cached.Negate()
		}
		p = p.Add(cached)
	}
	return p, f
}

// Multiply returns k*p.  k must be in [1, N-1].
func (m *Multiplier) Multiply(p AffinePoint, k *big.Int) (AffinePoint, error) {
	if !IsWithinOrder(k) {
		return AffinePoint{}, ecerr.New(ecerr.ErrInvalidScalar,
			"expected valid scalar: 0 < scalar < N")
	}
	if p.IsInfinity() {
		return Infinity, nil
	}

	handle := pointHandle(p)
	w := m.windowSize(handle)
	table, err := m.precomputes(p, handle, w)
	if err != nil {
		return AffinePoint{}, err
	}

	split, err := SplitScalar(k)
	if err != nil {
		return AffinePoint{}, err
	}

	k1p, f1p := wnaf(table, w, split.K1)
	k2p, f2p := wnaf(table, w, split.K2)
	if split.K1Neg {
		k1p = k1p.Negate()
	}
	if split.K2Neg {
		k2p = k2p.Negate()
	}
	k2p = JacobianPoint{X: field.Mod(new(big.Int).Mul(k2p.X, Beta)), Y: k2p.Y, Z: k2p.Z}

	point := k1p.Add(k2p)
	fake := f1p.Add(f2p)

	// Normalizing the decoy alongside the result forces its computation.
	normalized, err := ToAffineBatch([]JacobianPoint{point, fake})
	if err != nil {
		return AffinePoint{}, err
	}
	return normalized[0], nil
}
