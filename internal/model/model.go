package model

// Group 取扱い分類（1=非加熱、2=加熱、3=物品販売）
type Group int

const (
	GroupNonHeated Group = 1 // 非加熱のまま提供する品目
	GroupHeated    Group = 2 // 加熱してすぐ提供する品目
	GroupRetail    Group = 3 // 包装済み等の物品販売
)

// Valid 分類値が 1〜3 の範囲内かどうか
func (g Group) Valid() bool {
	return g >= GroupNonHeated && g <= GroupRetail
}

// Label 分類の表示名
func (g Group) Label() string {
	switch g {
	case GroupNonHeated:
		return "非加熱"
	case GroupHeated:
		return "加熱"
	case GroupRetail:
		return "物品販売"
	default:
		return ""
	}
}

// Groups 全分類（表示順）
func Groups() []Group {
	return []Group{GroupNonHeated, GroupHeated, GroupRetail}
}

// CheckStatus 点検セルの状態
type CheckStatus string

const (
	StatusUnset CheckStatus = ""     // 未入力
	StatusGood  CheckStatus = "good" // 良好
	StatusBad   CheckStatus = "bad"  // 不良
)

// Valid 状態値が定義済みのものかどうか
func (s CheckStatus) Valid() bool {
	return s == StatusUnset || s == StatusGood || s == StatusBad
}

// 必須管理項目ID（一般衛生6項目 + 重要管理3項目）
const (
	ItemMaterials          = "materialsAndWIP"
	ItemCoolerTemp         = "coolerTemp"
	ItemCrossContamination = "crossContamination"
	ItemEquipmentCleaning  = "equipmentCleaning"
	ItemEmployeeHealth     = "employeeHealth"
	ItemHandwashing        = "handwashing"
	ItemGroup1             = "group1"
	ItemGroup2             = "group2"
	ItemGroup3             = "group3"
)

// 自由記入行のフィールド名
const (
	FieldSpecialNotes  = "specialNotes"
	FieldReviewNotes   = "reviewNotes"
	FieldCheckerName   = "checkerName"
	FieldConfirmerName = "confirmerName"
)

// MandatoryCheckItems 1日分の記録で必ず埋めるべき9項目（表示順）
// 分類に該当メニューが無くても行は存在する。
func MandatoryCheckItems() []string {
	return []string{
		ItemMaterials,
		ItemCoolerTemp,
		ItemCrossContamination,
		ItemEquipmentCleaning,
		ItemEmployeeHealth,
		ItemHandwashing,
		ItemGroup1,
		ItemGroup2,
		ItemGroup3,
	}
}

// GroupCheckItem 分類に対応する重要管理項目ID
func GroupCheckItem(g Group) string {
	switch g {
	case GroupNonHeated:
		return ItemGroup1
	case GroupHeated:
		return ItemGroup2
	case GroupRetail:
		return ItemGroup3
	default:
		return ""
	}
}

// IsTemperatureItem 温度入力から状態を導出する項目かどうか（非加熱品のみ）
func IsTemperatureItem(itemID string) bool {
	return itemID == ItemGroup1
}

// ClassifiedMenuItem 分類済みのメニュー1件
type ClassifiedMenuItem struct {
	Name  string `json:"name"`
	Group Group  `json:"group"`
}

// CheckResult 点検セル1つ分の値
type CheckResult struct {
	Status      CheckStatus `json:"value"`
	Temperature string      `json:"temp,omitempty"`
}

// DailyRecord 営業日1日分の衛生管理記録
type DailyRecord struct {
	ID            int64                  `json:"id"`
	Date          string                 `json:"date"` // YYYY-MM-DD
	EventName     string                 `json:"eventName"`
	Checks        map[string]CheckResult `json:"records"`
	SpecialNotes  string                 `json:"specialNotes"`
	ReviewNotes   string                 `json:"reviewNotes"`
	CheckerName   string                 `json:"checkerName"`
	ConfirmerName string                 `json:"confirmerName"`
}

// Clone 深いコピーを返す
func (r *DailyRecord) Clone() *DailyRecord {
	c := *r
	c.Checks = make(map[string]CheckResult, len(r.Checks))
	for k, v := range r.Checks {
		c.Checks[k] = v
	}
	return &c
}

// ScheduleDetail 一般衛生項目の実施計画（いつ・対応・担当者）
type ScheduleDetail struct {
	When        string `json:"when"`
	Response    string `json:"response"`
	Responsible string `json:"responsible"`
}

// CriticalDetail 重要管理項目の実施計画（いつ・対応）
type CriticalDetail struct {
	When     string `json:"when"`
	Response string `json:"response"`
}

// HygienePlan 衛生管理計画の全体
type HygienePlan struct {
	RestaurantName         string                    `json:"restaurantName"`
	Preparer               string                    `json:"planPreparer"`
	Date                   string                    `json:"planDate"` // YYYY-MM-DD
	RawMenuItems           []string                  `json:"menuItems"`
	Classification         map[Group][]string        `json:"classifiedMenus"`
	GeneralHygieneDetails  map[string]ScheduleDetail `json:"generalHygieneDetails"`
	CriticalControlDetails map[Group]CriticalDetail  `json:"criticalControlDetails"`
}

// NewHygienePlan 空の計画（分類マップは3分類とも初期化済み）
func NewHygienePlan() *HygienePlan {
	return &HygienePlan{
		Classification: map[Group][]string{
			GroupNonHeated: {},
			GroupHeated:    {},
			GroupRetail:    {},
		},
		GeneralHygieneDetails:  map[string]ScheduleDetail{},
		CriticalControlDetails: map[Group]CriticalDetail{},
	}
}

// Clone 深いコピーを返す
func (p *HygienePlan) Clone() *HygienePlan {
	c := *p
	c.RawMenuItems = append([]string(nil), p.RawMenuItems...)
	c.Classification = make(map[Group][]string, len(p.Classification))
	for g, names := range p.Classification {
		c.Classification[g] = append([]string(nil), names...)
	}
	c.GeneralHygieneDetails = make(map[string]ScheduleDetail, len(p.GeneralHygieneDetails))
	for k, v := range p.GeneralHygieneDetails {
		c.GeneralHygieneDetails[k] = v
	}
	c.CriticalControlDetails = make(map[Group]CriticalDetail, len(p.CriticalControlDetails))
	for k, v := range p.CriticalControlDetails {
		c.CriticalControlDetails[k] = v
	}
	return &c
}

// HasClassification 分類済みメニューが1件以上あるか
func (p *HygienePlan) HasClassification() bool {
	for _, names := range p.Classification {
		if len(names) > 0 {
			return true
		}
	}
	return false
}
