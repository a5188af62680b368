// Cadence - Predictive Artist Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package algorithms

// Matrix is a dense users x items affinity matrix.
//
// Row and column order is the order in which users and items were first
// seen by the Accumulator that produced it.
type Matrix struct {
	Users  []string
	Items  []string
	Values [][]float64

	userIndex map[string]int
	itemIndex map[string]int
}

// Rows returns the number of users.
func (m *Matrix) Rows() int { return len(m.Users) }

// Cols returns the number of items.
func (m *Matrix) Cols() int { return len(m.Items) }

// Empty reports whether the matrix has no cells.
func (m *Matrix) Empty() bool { return m == nil || len(m.Users) == 0 || len(m.Items) == 0 }

// UserIndex returns the row of user.
func (m *Matrix) UserIndex(user string) (int, bool) {
	i, ok := m.userIndex[user]
	return i, ok
}

// ItemIndex returns the column of item.
func (m *Matrix) ItemIndex(item string) (int, bool) {
	j, ok := m.itemIndex[item]
	return j, ok
}

// At returns the value for (user, item), or 0 when either is unknown.
func (m *Matrix) At(user, item string) float64 {
	i, ok := m.userIndex[user]
	if !ok {
		return 0
	}
	j, ok := m.itemIndex[item]
	if !ok {
		return 0
	}
	return m.Values[i][j]
}

// Row returns the stored row for user. The slice must not be modified.
func (m *Matrix) Row(user string) ([]float64, bool) {
	i, ok := m.userIndex[user]
	if !ok {
		return nil, false
	}
	return m.Values[i], true
}

// NonZero returns the number of non-zero cells.
func (m *Matrix) NonZero() int {
	n := 0
	for _, row := range m.Values {
		for _, v := range row {
			if v != 0 {
				n++
			}
		}
	}
	return n
}

// Filter keeps users and items that each have at least minSupport non-zero
// entries in m. Both counts are taken on m before anything is removed.
// A minSupport <= 0 returns a copy of m.
func (m *Matrix) Filter(minSupport int) *Matrix {
	userCounts := make([]int, len(m.Users))
	itemCounts := make([]int, len(m.Items))
	for i, row := range m.Values {
		for j, v := range row {
			if v != 0 {
				userCounts[i]++
				itemCounts[j]++
			}
		}
	}

	var rows, cols []int
	for i, c := range userCounts {
		if c >= minSupport {
			rows = append(rows, i)
		}
	}
	for j, c := range itemCounts {
		if c >= minSupport {
			cols = append(cols, j)
		}
	}

	out := &Matrix{
		Users:     make([]string, len(rows)),
		Items:     make([]string, len(cols)),
		Values:    make([][]float64, len(rows)),
		userIndex: make(map[string]int, len(rows)),
		itemIndex: make(map[string]int, len(cols)),
	}
	for nj, j := range cols {
		out.Items[nj] = m.Items[j]
		out.itemIndex[m.Items[j]] = nj
	}
	for ni, i := range rows {
		out.Users[ni] = m.Users[i]
		out.userIndex[m.Users[i]] = ni
		row := make([]float64, len(cols))
		for nj, j := range cols {
			row[nj] = m.Values[i][j]
		}
		out.Values[ni] = row
	}
	return out
}

// Accumulator collects sparse (user, item, value) contributions and
// materializes them as a dense Matrix.
type Accumulator struct {
	users     []string
	items     []string
	userIndex map[string]int
	itemIndex map[string]int
	cells     map[[2]int]float64
}

// NewAccumulator returns an empty Accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{
		userIndex: make(map[string]int),
		itemIndex: make(map[string]int),
		cells:     make(map[[2]int]float64),
	}
}

func (a *Accumulator) key(user, item string) [2]int {
	i, ok := a.userIndex[user]
	if !ok {
		i = len(a.users)
		a.users = append(a.users, user)
		a.userIndex[user] = i
	}
	j, ok := a.itemIndex[item]
	if !ok {
		j = len(a.items)
		a.items = append(a.items, item)
		a.itemIndex[item] = j
	}
	return [2]int{i, j}
}

// Set overwrites the value for (user, item).
func (a *Accumulator) Set(user, item string, v float64) {
	a.cells[a.key(user, item)] = v
}

// Add increments the value for (user, item).
func (a *Accumulator) Add(user, item string, v float64) {
	a.cells[a.key(user, item)] += v
}

// Dense materializes the accumulated cells. Missing pairs are 0.
func (a *Accumulator) Dense() *Matrix {
	m := &Matrix{
		Users:     append([]string(nil), a.users...),
		Items:     append([]string(nil), a.items...),
		Values:    make([][]float64, len(a.users)),
		userIndex: make(map[string]int, len(a.users)),
		itemIndex: make(map[string]int, len(a.items)),
	}
	for i, u := range m.Users {
		m.userIndex[u] = i
		m.Values[i] = make([]float64, len(m.Items))
	}
	for j, it := range m.Items {
		m.itemIndex[it] = j
	}
	for k, v := range a.cells {
		m.Values[k[0]][k[1]] = v
	}
	return m
}

// NewMatrix builds a Matrix from explicit labels and values.
// values must have len(users) rows of len(items) columns; it is not copied.
func NewMatrix(users, items []string, values [][]float64) *Matrix {
	m := &Matrix{
		Users:     users,
		Items:     items,
		Values:    values,
		userIndex: make(map[string]int, len(users)),
		itemIndex: make(map[string]int, len(items)),
	}
	for i, u := range users {
		m.userIndex[u] = i
	}
	for j, it := range items {
		m.itemIndex[it] = j
	}
	return m
}
