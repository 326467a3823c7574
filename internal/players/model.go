package players

// Player is someone attached to a training room. Best and Runs cover completed
// scenario runs in this room.
type Player struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Best  int    `json:"best"`
	Runs  int    `json:"runs"`
	Host  bool   `json:"host"`
}
