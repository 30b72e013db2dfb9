package usecase

// Admins is the operator allow-list.
type Admins struct {
	ids   map[int64]struct{}
	order []int64
}

func NewAdmins(ids []int64) *Admins {
	a := &Admins{ids: make(map[int64]struct{}, len(ids))}
	for _, id := range ids {
		if _, dup := a.ids[id]; dup {
			continue
		}
		a.ids[id] = struct{}{}
		a.order = append(a.order, id)
	}
	return a
}

func (a *Admins) IsAdmin(userID int64) bool {
	_, ok := a.ids[userID]
	return ok
}

// Authorize returns ErrPermissionDenied for anyone outside the allow-list.
func (a *Admins) Authorize(userID int64) error {
	if !a.IsAdmin(userID) {
		return ErrPermissionDenied
	}
	return nil
}

// IDs returns the allow-list in configuration order.
func (a *Admins) IDs() []int64 {
	return append([]int64(nil), a.order...)
}
