package location

type CreateRequest struct {
	Name      string   `json:"name" binding:"required"`
	Address   string   `json:"address"`
	Latitude  *float64 `json:"latitude" binding:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" binding:"required,gte=-180,lte=180"`
}

// UpdateRequest carries partial-update fields; absent fields stay untouched.
// State is honored only on the admin path.
type UpdateRequest struct {
	Name      *string  `json:"name" binding:"omitempty,min=1"`
	Address   *string  `json:"address"`
	Latitude  *float64 `json:"latitude" binding:"omitempty,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" binding:"omitempty,gte=-180,lte=180"`
	State     string   `json:"state" binding:"omitempty,oneof=PENDING APPROVED REJECTED AUTO_GENERATED"`
}

// Merge applies the provided non-state fields.
func (l *Location) Merge(patch UpdateRequest) {
	if patch.Name != nil {
		l.Name = *patch.Name
	}
	if patch.Address != nil {
		l.Address = *patch.Address
	}
	if patch.Latitude != nil {
		l.Latitude = *patch.Latitude
	}
	if patch.Longitude != nil {
		l.Longitude = *patch.Longitude
	}
}

type DtoOut struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Address   string  `json:"address,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type FullDtoOut struct {
	ID        int64   `json:"id"`
	CreatorID *int64  `json:"creator,omitempty"`
	Name      string  `json:"name"`
	Address   string  `json:"address,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	State     State   `json:"state"`
}

func ToDto(l Location) DtoOut {
	return DtoOut{
		ID:        l.ID,
		Name:      l.Name,
		Address:   l.Address,
		Latitude:  l.Latitude,
		Longitude: l.Longitude,
	}
}

func ToFullDto(l Location) FullDtoOut {
	return FullDtoOut{
		ID:        l.ID,
		CreatorID: l.CreatorID,
		Name:      l.Name,
		Address:   l.Address,
		Latitude:  l.Latitude,
		Longitude: l.Longitude,
		State:     l.State,
	}
}

// Filter narrows location listings; nil/empty fields impose no constraint.
// Radius defaults to 10 when a center is supplied without one.
type Filter struct {
	Text      *string
	Creators  []int64
	State     *State
	Lat       *float64
	Lon       *float64
	Radius    float64
	MinEvents *int
	MaxEvents *int

	Offset int
	Limit  int
}

const DefaultRadius = 10.0
