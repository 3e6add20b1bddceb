package connection

type ReqPlaceShip struct {
	ClassIndex int  `json:"class_index"`
	Row        int  `json:"row"`
	Col        int  `json:"col"`
	Horizontal bool `json:"horizontal"`
}

type ReqAttack struct {
	Row int `json:"row"`
	Col int `json:"col"`
}
