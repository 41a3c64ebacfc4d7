package model

import "time"

// MovementType 行程方向
type MovementType string

const (
	MovementArrival   MovementType = "A" // 到达
	MovementDeparture MovementType = "D" // 离开
	MovementUnknown   MovementType = ""  // 未知
)

// BookingDossier 订单档案（以 reference 为业务主键的规范化记录）
// 同一 reference 再次导入时整条覆盖，不做字段级合并
type BookingDossier struct {
	Reference        string       `json:"reference"`
	Movement         MovementType `json:"movement"`
	City             string       `json:"city"`
	ArrivalAirport   string       `json:"arrivalAirport"`
	DepartureAirport string       `json:"departureAirport"`
	ArrivalFlight    string       `json:"arrivalFlight"`
	DepartureFlight  string       `json:"departureFlight"`
	ArrivalTime      *time.Time   `json:"arrivalTime,omitempty"`
	DepartureTime    *time.Time   `json:"departureTime,omitempty"`
	PaxArrival       int          `json:"paxArrival"`
	PaxDeparture     int          `json:"paxDeparture"`
	HolderName       string       `json:"holderName"`
	HotelID          int64        `json:"hotelId,omitempty"`
	HotelName        string       `json:"hotelName"`
	TourOperator     string       `json:"tourOperator"`
	Observations     string       `json:"observations"`

	// 行来源信息（用于导入报告定位）
	RowNo       int    `json:"rowNo"`
	SourceSheet string `json:"sourceSheet"`
	SourceFile  string `json:"sourceFile"`
}

// Hotel 酒店实体（按规范化名称大小写不敏感唯一）
type Hotel struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	City    string `json:"city"`
	Address string `json:"address"`
}
