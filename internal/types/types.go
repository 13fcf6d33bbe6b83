// Package types provides shared domain definitions used across sparkos packages.
// This package exists to break import cycles between store, ops, and uplink.
// Types here are foundational data structures with no complex dependencies:
// every entity is a plain serializable struct with a string ID, and references
// between entities are soft (IDs resolved by linear scan).
package types

import "time"

// =============================================================================
// PROJECTS
// =============================================================================

// ProjectStatus is one of the eight ordered lifecycle stages. Transitions are
// operator-driven; any status is reachable from any other.
type ProjectStatus string

const (
	StatusLead          ProjectStatus = "Lead"
	StatusSurvey        ProjectStatus = "Survey"
	StatusQuotation     ProjectStatus = "Quotation"
	StatusNegotiation   ProjectStatus = "Negotiation"
	StatusDeal          ProjectStatus = "Deal"
	StatusConstruction  ProjectStatus = "Construction"
	StatusCommissioning ProjectStatus = "Commissioning"
	StatusMaintenance   ProjectStatus = "Maintenance"
)

// Completed reports whether a project counts as historical for analytics.
// Commissioning and Maintenance projects are archive material; everything
// else is active pipeline.
func (s ProjectStatus) Completed() bool {
	return s == StatusCommissioning || s == StatusMaintenance
}

// ProjectFinancials is the money snapshot carried on every project.
type ProjectFinancials struct {
	MaterialCost    float64 `json:"materialCost"`
	LaborCost       float64 `json:"laborCost"`
	OperationalCost float64 `json:"operationalCost"`
	AgreedValue     float64 `json:"agreedValue"`
	Invoiced        float64 `json:"invoiced"`
	Paid            float64 `json:"paid"`
}

// TotalCost is material + labor + operational.
func (f ProjectFinancials) TotalCost() float64 {
	return f.MaterialCost + f.LaborCost + f.OperationalCost
}

// Margin is the fraction of agreed value left after costs. Zero when no
// value has been agreed.
func (f ProjectFinancials) Margin() float64 {
	if f.AgreedValue == 0 {
		return 0
	}
	return (f.AgreedValue - f.TotalCost()) / f.AgreedValue
}

// TaskStatus is the per-task schedule state.
type TaskStatus string

const (
	TaskPending    TaskStatus = "Pending"
	TaskInProgress TaskStatus = "In Progress"
	TaskCompleted  TaskStatus = "Completed"
)

// ScheduleTask is one step of a project construction schedule. Dependencies
// are informational; nothing enforces completion order.
type ScheduleTask struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	WeekStart     int        `json:"weekStart"`
	DurationWeeks int        `json:"durationWeeks"`
	Status        TaskStatus `json:"status"`
	Progress      int        `json:"progress"`
	Dependencies  []string   `json:"dependencies,omitempty"`
}

// RiskLevel buckets a risk score.
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskMedium   RiskLevel = "Medium"
	RiskHigh     RiskLevel = "High"
	RiskCritical RiskLevel = "Critical"
)

// RiskAssessment is a model-generated risk view attached to a project.
type RiskAssessment struct {
	Score                 int       `json:"score"`
	Level                 RiskLevel `json:"level"`
	Analysis              string    `json:"analysis"`
	Factors               []string  `json:"factors"`
	MitigationSuggestions []string  `json:"mitigationSuggestions"`
	LastUpdated           string    `json:"lastUpdated"`
}

// Coordinates is an optional map position.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Project is a solar EPC engagement from lead to maintenance.
type Project struct {
	ID                  string            `json:"id"`
	ClientName          string            `json:"clientName"`
	ProjectType         string            `json:"projectType"`
	Location            string            `json:"location"`
	Coordinates         *Coordinates      `json:"coordinates,omitempty"`
	CapacityKWp         float64           `json:"capacityKWp"`
	Status              ProjectStatus     `json:"status"`
	Progress            int               `json:"progress"`
	LastUpdate          string            `json:"lastUpdate"`
	StartDate           string            `json:"startDate,omitempty"`
	EndDate             string            `json:"endDate,omitempty"`
	Financials          ProjectFinancials `json:"financials"`
	AssignedManpowerIDs []string          `json:"assignedManpowerIds"`
	Schedule            []ScheduleTask    `json:"schedule"`
	RiskAssessment      *RiskAssessment   `json:"riskAssessment,omitempty"`
	ProjectPlan         string            `json:"projectPlan,omitempty"`
	PlanAnalysis        string            `json:"planAnalysis,omitempty"`
	Notes               string            `json:"notes"`
}

// =============================================================================
// MANPOWER
// =============================================================================

// WorkerStatus is the deployment state of a crew member.
type WorkerStatus string

const (
	WorkerAvailable WorkerStatus = "Available"
	WorkerOnSite    WorkerStatus = "On-Site"
	WorkerOffDuty   WorkerStatus = "Off-Duty"
)

// AttendanceStatus is one calendar day's record for a worker.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "Present"
	AttendanceAbsent  AttendanceStatus = "Absent"
	AttendanceSick    AttendanceStatus = "Sick"
	AttendanceLeave   AttendanceStatus = "Leave"
)

// AttendanceRecord maps a date (YYYY-MM-DD) to a status. At most one record
// exists per worker per date.
type AttendanceRecord struct {
	Date   string           `json:"date"`
	Status AttendanceStatus `json:"status"`
}

// Certification is a named credential with an expiry.
type Certification struct {
	Name       string `json:"name"`
	Issuer     string `json:"issuer"`
	ExpiryDate string `json:"expiryDate"`
}

// WorkerDocument is an uploaded identity or certificate scan.
type WorkerDocument struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
	URL  string `json:"url,omitempty"`
}

// Manpower is one crew member. AttendanceDaysThisMonth and
// TotalEarnedThisMonth are derived fields, recomputed whenever attendance
// changes.
type Manpower struct {
	ID                      string             `json:"id"`
	Name                    string             `json:"name"`
	Role                    string             `json:"role"`
	Status                  WorkerStatus       `json:"status"`
	Coordinates             *Coordinates       `json:"coordinates,omitempty"`
	Skills                  []string           `json:"skills"`
	Certifications          []Certification    `json:"certifications,omitempty"`
	Documents               []WorkerDocument   `json:"documents,omitempty"`
	AttendanceHistory       []AttendanceRecord `json:"attendanceHistory,omitempty"`
	DailyRate               float64            `json:"dailyRate"`
	CurrentProjectID        string             `json:"currentProjectId,omitempty"`
	PerformanceScore        int                `json:"performanceScore"`
	ProjectsCompleted       int                `json:"projectsCompleted"`
	Phone                   string             `json:"phone,omitempty"`
	JoinDate                string             `json:"joinDate,omitempty"`
	AttendanceDaysThisMonth int                `json:"attendanceDaysThisMonth"`
	TotalEarnedThisMonth    float64            `json:"totalEarnedThisMonth"`
}

// =============================================================================
// INVENTORY
// =============================================================================

// ItemCategory is the closed inventory category set.
type ItemCategory string

const (
	CategorySolarPanel  ItemCategory = "Solar Panel"
	CategoryInverter    ItemCategory = "Inverter"
	CategoryCable       ItemCategory = "Cable"
	CategoryMounting    ItemCategory = "Mounting"
	CategoryAccessories ItemCategory = "Accessories"
	CategoryTools       ItemCategory = "Tools"
	CategorySafety      ItemCategory = "Safety"
)

// InventoryItem is warehouse stock. Stock never goes negative; the only
// mutation path is ops.ApplyTransaction, which rejects overdraws.
type InventoryItem struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Category     ItemCategory `json:"category"`
	Stock        int          `json:"stock"`
	Unit         string       `json:"unit"`
	MinStock     int          `json:"minStock"`
	Location     string       `json:"location"`
	PricePerUnit float64      `json:"pricePerUnit"`
	LastUpdated  string       `json:"lastUpdated,omitempty"`
	SupplierID   string       `json:"supplierId,omitempty"`
}

// LowStock reports whether the item sits at or under its reorder threshold.
func (i InventoryItem) LowStock() bool { return i.Stock <= i.MinStock }

// TransactionType is the direction of a stock movement.
type TransactionType string

const (
	TransactionIn  TransactionType = "IN"
	TransactionOut TransactionType = "OUT"
)

// InventoryTransaction is an append-only movement log entry. Entries are
// never mutated or deleted.
type InventoryTransaction struct {
	ID       string          `json:"id"`
	ItemID   string          `json:"itemId"`
	ItemName string          `json:"itemName"`
	Type     TransactionType `json:"type"`
	Amount   int             `json:"amount"`
	Date     string          `json:"date"`
	Notes    string          `json:"notes"`
	PIC      string          `json:"pic"`
}

// =============================================================================
// CHAT
// =============================================================================

// WebSource is one web citation attached to a grounded model reply.
type WebSource struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// MapSource is one maps citation attached to a grounded model reply.
type MapSource struct {
	Title   string `json:"title"`
	Address string `json:"address,omitempty"`
	URL     string `json:"url"`
}

// GroundingMetadata carries the citations the model used for a reply.
type GroundingMetadata struct {
	SearchQuery string      `json:"searchQuery,omitempty"`
	WebSources  []WebSource `json:"webSources,omitempty"`
	MapSources  []MapSource `json:"mapSources,omitempty"`
}

// ChatMessage is one entry of the append-only conversation log.
type ChatMessage struct {
	ID             string             `json:"id"`
	Sender         string             `json:"sender"`
	Text           string             `json:"text"`
	Timestamp      time.Time          `json:"timestamp"`
	IsAI           bool               `json:"isAi,omitempty"`
	Channel        string             `json:"channel"`
	Attachment     []byte             `json:"attachment,omitempty"`
	AttachmentMIME string             `json:"attachmentMime,omitempty"`
	AttachmentName string             `json:"attachmentName,omitempty"`
	ModelUsed      string             `json:"modelUsed,omitempty"`
	Grounding      *GroundingMetadata `json:"groundingMetadata,omitempty"`
}

// =============================================================================
// SUPPLIERS, HSE, TRAINING
// =============================================================================

// Supplier is a material vendor.
type Supplier struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	ContactPerson string `json:"contactPerson"`
	Phone         string `json:"phone"`
	Email         string `json:"email,omitempty"`
	Category      string `json:"category"`
	Rating        int    `json:"rating"`
}

// IncidentType classifies an HSE event.
type IncidentType string

const (
	IncidentNearMiss        IncidentType = "Near Miss"
	IncidentMinorInjury     IncidentType = "Minor Injury"
	IncidentEquipmentDamage IncidentType = "Equipment Damage"
	IncidentHazard          IncidentType = "Hazard"
)

// SafetyIncident is one HSE log entry.
type SafetyIncident struct {
	ID          string       `json:"id"`
	Date        string       `json:"date"`
	Type        IncidentType `json:"type"`
	Description string       `json:"description"`
	Status      string       `json:"status"`
	ProjectID   string       `json:"projectId,omitempty"`
}

// TrainingCourse is one academy course with its enrollment list.
type TrainingCourse struct {
	ID                  string   `json:"id"`
	Title               string   `json:"title"`
	Description         string   `json:"description"`
	DurationHours       int      `json:"durationHours"`
	MandatoryForRole    []string `json:"mandatoryForRole,omitempty"`
	EnrolledManpowerIDs []string `json:"enrolledManpowerIds"`
}

// =============================================================================
// SETTINGS
// =============================================================================

// CompanySettings is the operator-editable company profile.
type CompanySettings struct {
	CompanyName  string  `json:"companyName"`
	BaseCurrency string  `json:"baseCurrency"`
	TaxRate      float64 `json:"taxRate"`
	LogoURL      string  `json:"logoUrl,omitempty"`
}

// DefaultSettings is the settings document used when none has been saved or
// the stored one fails to parse.
func DefaultSettings() CompanySettings {
	return CompanySettings{
		CompanyName:  "Sparko Corp",
		BaseCurrency: "IDR",
		TaxRate:      11,
	}
}

// DefaultPLNRate is the fallback grid tariff in IDR per kWh, used for
// savings estimates when the operator has not set one.
const DefaultPLNRate = 1444.70
