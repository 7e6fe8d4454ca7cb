package levelgen

import (
	"math"
	"math/rand"
	"sort"

	"github.com/milk9111/tilecrowd/common"
	"github.com/milk9111/tilecrowd/envelope"
	"github.com/milk9111/tilecrowd/level"
)

type room struct {
	x, y, w, h int
}

// intersects is true when the rooms touch or overlap, keeping one tile between walls.
func (r room) intersects(o room) bool {
	return r.x-1 <= o.x+o.w && o.x-1 <= r.x+r.w && r.y-1 <= o.y+o.h && o.y-1 <= r.y+r.h
}

// builder holds the state of one generation attempt.
type builder struct {
	cfg  Config
	env  envelope.Envelope
	rng  *rand.Rand
	grid *level.Grid

	ground  int
	goalRow int
	reach   int

	spawn level.Cell
	rooms []room
	path  []level.Platform

	// reserved cells are kept clear of decoration so the path stays open.
	reserved []bool
	critical []bool
}

func newBuilder(cfg Config, env envelope.Envelope, cols, rows, goalRow int, rng *rand.Rand) *builder {
	return &builder{
		cfg:      cfg,
		env:      env,
		rng:      rng,
		grid:     level.New(cols, rows),
		ground:   rows - 2,
		goalRow:  goalRow,
		reach:    max(1, int(math.Floor(env.MaxHorizontalSingleJumpTiles))),
		reserved: make([]bool, cols*rows),
		critical: make([]bool, cols*rows),
	}
}

func (b *builder) build() {
	b.grid.Fill(0, b.ground, b.grid.Cols-1, b.grid.Rows-1, level.Solid)
	b.grid.Border()

	b.spawn = level.Cell{Col: b.between(2, b.grid.Cols-3), Row: b.ground - 1}
	b.markReserved(b.spawn.Col-1, b.spawn.Row-2, b.spawn.Col+1, b.spawn.Row)

	b.placeRooms()
	b.connectRooms()
	b.placeCriticalPath()
	b.placeExtras()
	b.placeColumns()
	b.placeHazards()

	b.grid.Set(b.spawn.Col, b.spawn.Row, level.Spawn)
}

// between returns a uniform int in [lo, hi]; hi < lo yields lo.
func (b *builder) between(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + b.rng.Intn(hi-lo+1)
}

func (b *builder) idx(col, row int) int {
	return row*b.grid.Cols + col
}

func (b *builder) isReserved(col, row int) bool {
	return !b.grid.InBounds(col, row) || b.reserved[b.idx(col, row)]
}

func (b *builder) isCritical(col, row int) bool {
	return b.grid.InBounds(col, row) && b.critical[b.idx(col, row)]
}

func (b *builder) markReserved(c0, r0, c1, r1 int) {
	for r := max(r0, 0); r <= min(r1, b.grid.Rows-1); r++ {
		for c := max(c0, 0); c <= min(c1, b.grid.Cols-1); c++ {
			b.reserved[b.idx(c, r)] = true
		}
	}
}

// interior reports whether the cell is inside the border and above the ground band.
func (b *builder) interior(col, row int) bool {
	return col >= 1 && col <= b.grid.Cols-2 && row >= 1 && row < b.ground
}

func (b *builder) placeRooms() {
	cols := b.grid.Cols
	top, bottom := b.goalRow+1, b.ground-4
	count := b.between(b.cfg.RoomsMin, b.cfg.RoomsMax)
	for i := 0; i < count; i++ {
		for try := 0; try < 10; try++ {
			w := b.between(b.cfg.RoomMinW, b.cfg.RoomMaxW)
			h := b.between(b.cfg.RoomMinH, b.cfg.RoomMaxH)
			if w > cols-4 || bottom-top+1 < h {
				break
			}
			r := room{
				x: b.between(2, cols-w-2),
				y: b.between(top, bottom-h+1),
				w: w,
				h: h,
			}
			if b.roomClashes(r) {
				continue
			}
			b.carveRoom(r)
			b.rooms = append(b.rooms, r)
			break
		}
	}
}

func (b *builder) roomClashes(r room) bool {
	for _, o := range b.rooms {
		if r.intersects(o) {
			return true
		}
	}
	return false
}

func (b *builder) carveRoom(r room) {
	b.grid.Fill(r.x, r.y, r.x+r.w-1, r.y+r.h-1, level.Solid)
	b.grid.Fill(r.x+1, r.y+1, r.x+r.w-2, r.y+r.h-2, level.Empty)
	if r.w >= 6 {
		level.Platform{Row: r.y + r.h - 3, Start: r.x + 2, End: r.x + r.w - 2}.Stamp(b.grid)
	}
}

// connectRooms opens a one-row doorway between rooms adjacent in x order.
// Pairs with no shared interior rows stay unconnected.
func (b *builder) connectRooms() {
	sorted := append([]room(nil), b.rooms...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].x < sorted[j].x })
	for i := 1; i < len(sorted); i++ {
		a, c := sorted[i-1], sorted[i]
		lo := max(a.y+1, c.y+1)
		hi := min(a.y+a.h-2, c.y+c.h-2)
		if hi < lo {
			continue
		}
		row := b.between(lo, hi)
		from, to := a.x+a.w-1, c.x
		if from > to {
			continue
		}
		for col := from; col <= to; col++ {
			if b.interior(col, row) {
				b.grid.Set(col, row, level.Empty)
			}
		}
	}
}

// placeCriticalPath climbs from the spawn floor to the goal band.
func (b *builder) placeCriticalPath() {
	cols := b.grid.Cols
	prev := level.Platform{Row: b.ground, Start: max(1, b.spawn.Col-2), End: min(cols-1, b.spawn.Col+3)}

	for prev.Row-1 > b.goalRow {
		gap := b.between(b.env.MinGapTiles, b.env.MaxGapTiles)
		row := max(2, prev.Row-gap)
		next, ok := b.candidate(prev, row)
		if !ok {
			next = b.forced(prev, row)
		}
		b.commit(prev, next)
		prev = next
	}
}

func (b *builder) length() int {
	return b.between(b.cfg.PlatformMinLen, b.cfg.PlatformMaxLen)
}

func (b *builder) candidate(prev level.Platform, row int) (level.Platform, bool) {
	cols := b.grid.Cols
	for try := 0; try < b.cfg.CandidateTries; try++ {
		n := min(b.length(), cols-2)
		lo := max(1, prev.Start-b.reach-n)
		hi := min(cols-1-n, prev.End+b.reach-1)
		p := level.Platform{Row: row, Start: b.between(lo, hi)}
		p.End = p.Start + n
		if b.fits(prev, p) {
			return p, true
		}
	}
	return level.Platform{}, false
}

// cellGap is the column distance between the nearest standing cells.
func cellGap(a, p level.Platform) int {
	if a.Overlap(p) > 0 {
		return 0
	}
	return a.EdgeGap(p) + 1
}

func overlapRatio(a, p level.Platform) float64 {
	shorter := min(a.Len(), p.Len())
	if shorter <= 0 {
		return 0
	}
	return float64(a.Overlap(p)) / float64(shorter)
}

func (b *builder) fits(prev, p level.Platform) bool {
	if p.Start < 1 || p.End > b.grid.Cols-1 || p.Len() <= 0 {
		return false
	}
	if cellGap(prev, p) > b.reach {
		return false
	}
	if overlapRatio(prev, p) >= b.cfg.MaxOverlapRatio {
		return false
	}
	for r := p.Row - 1; r <= p.Row+1; r++ {
		for c := p.Start - 1; c <= p.End; c++ {
			if b.isCritical(c, r) {
				return false
			}
		}
	}
	return true
}

// forced places next just past prev's far side, away from the nearer wall.
func (b *builder) forced(prev level.Platform, row int) level.Platform {
	cols := b.grid.Cols
	n := min(b.cfg.PlatformMinLen, cols-2)
	right := level.Platform{Row: row, Start: prev.End + 1, End: prev.End + 1 + n}
	left := level.Platform{Row: row, Start: prev.Start - 1 - n, End: prev.Start - 1}
	order := []level.Platform{right, left}
	if prev.Center() >= cols/2 {
		order = []level.Platform{left, right}
	}
	for _, p := range order {
		if p.Start >= 1 && p.End <= cols-1 {
			return p
		}
	}
	start := common.ClampInt(prev.Start, 1, cols-1-n)
	return level.Platform{Row: row, Start: start, End: start + n}
}

// commit carves the jump corridor from prev to next, stamps next and
// reserves both its standing row and the corridor.
func (b *builder) commit(prev, next level.Platform) {
	c0 := max(1, min(prev.Start, next.Start))
	c1 := min(b.grid.Cols-2, max(prev.End, next.End)-1)
	r0 := max(1, next.Row-2)
	r1 := prev.Row - 1
	for r := r0; r <= r1; r++ {
		for c := c0; c <= c1; c++ {
			if b.interior(c, r) && !b.isCritical(c, r) {
				b.grid.Set(c, r, level.Empty)
			}
		}
	}
	b.markReserved(c0, r0, c1, r1)

	next.Stamp(b.grid)
	for c := next.Start; c < next.End; c++ {
		b.critical[b.idx(c, next.Row)] = true
	}
	b.markReserved(next.Start, next.Row, next.End-1, next.Row)
	b.path = append(b.path, next)
}

func (b *builder) placeExtras() {
	cols := b.grid.Cols
	count := b.between(b.cfg.ExtrasMin, b.cfg.ExtrasMax)
	for i := 0; i < count; i++ {
		n := b.between(2, 6)
		if n > cols-2 || b.ground-2 < 2 {
			return
		}
		p := level.Platform{Row: b.between(2, b.ground-2), Start: b.between(1, cols-1-n)}
		p.End = p.Start + n
		if b.extraBlocked(p) {
			continue
		}
		p.Stamp(b.grid)
	}
}

func (b *builder) extraBlocked(p level.Platform) bool {
	for c := p.Start; c < p.End; c++ {
		if b.isReserved(c, p.Row) || b.isReserved(c, p.Row-1) {
			return true
		}
	}
	for _, q := range b.path {
		if common.AbsInt(q.Row-p.Row) < b.env.MinGapTiles && overlapRatio(q, p) >= b.cfg.MaxOverlapRatio {
			return true
		}
	}
	return false
}

// placeColumns raises walls from the floor, each with a doorway at the
// height of the nearest critical platform it spans.
func (b *builder) placeColumns() {
	cols := b.grid.Cols
	count := b.between(b.cfg.ColumnsMin, b.cfg.ColumnsMax)
	for i := 0; i < count; i++ {
		x := b.between(3, cols-4)
		if common.AbsInt(x-b.spawn.Col) <= 3 {
			continue
		}
		top := b.between(b.goalRow+2, b.ground-3)
		doorLo, doorHi := b.ground-3, b.ground-1
		best := math.MaxInt
		for _, q := range b.path {
			if q.Row <= top || q.Row >= b.ground {
				continue
			}
			if d := common.AbsInt(q.Center() - x); d < best {
				best = d
				doorLo, doorHi = max(top, q.Row-3), q.Row-1
			}
		}
		for r := top; r < b.ground; r++ {
			if r >= doorLo && r <= doorHi {
				continue
			}
			if !b.isReserved(x, r) {
				b.grid.Set(x, r, level.Solid)
			}
		}
	}
}

// placeHazards puts hazards on solid tops away from spawn, never side by side.
func (b *builder) placeHazards() {
	cols, rows := b.grid.Cols, b.grid.Rows
	want := int(math.Round(b.cfg.HazardDensity * float64(cols*rows)))
	for placed, tries := 0, 0; placed < want && tries < want*20; tries++ {
		c := b.between(1, cols-2)
		r := b.between(1, b.ground-1)
		if b.grid.At(c, r) != level.Empty || !b.grid.IsSolid(c, r+1) || b.isReserved(c, r) {
			continue
		}
		if common.AbsInt(c-b.spawn.Col)+common.AbsInt(r-b.spawn.Row) <= b.cfg.SpawnSafeRadius {
			continue
		}
		if b.grid.IsHazard(c-1, r) || b.grid.IsHazard(c+1, r) {
			continue
		}
		b.grid.Set(c, r, level.Hazard)
		placed++
	}
}
