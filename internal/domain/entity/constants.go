package entity

// GlobalStatus is the lifecycle status of a whole project.
type GlobalStatus string

const (
	GlobalStatusVigente    GlobalStatus = "VIGENTE"
	GlobalStatusFinalizado GlobalStatus = "FINALIZADO"
	GlobalStatusVencido    GlobalStatus = "VENCIDO"
	GlobalStatusCancelado  GlobalStatus = "CANCELADO"
)

var validGlobalStatuses = map[GlobalStatus]bool{
	GlobalStatusVigente:    true,
	GlobalStatusFinalizado: true,
	GlobalStatusVencido:    true,
	GlobalStatusCancelado:  true,
}

// IsValid returns true if the status is a known global status.
func (s GlobalStatus) IsValid() bool {
	return validGlobalStatuses[s]
}

// String returns the string representation of the status.
func (s GlobalStatus) String() string {
	return string(s)
}

// StageName identifies one phase of the degree-work pipeline.
type StageName string

const (
	StagePropuesta    StageName = "PROPUESTA"
	StageAnteproyecto StageName = "ANTEPROYECTO"
	StageInformeFinal StageName = "INFORME_FINAL"
	StageSustentacion StageName = "SUSTENTACION"
)

var validStageNames = map[StageName]bool{
	StagePropuesta:    true,
	StageAnteproyecto: true,
	StageInformeFinal: true,
	StageSustentacion: true,
}

// IsValid returns true if the name is a known stage name.
func (n StageName) IsValid() bool {
	return validStageNames[n]
}

// String returns the string representation of the stage name.
func (n StageName) String() string {
	return string(n)
}

// RequiresEndorsement reports whether jury evaluation of this stage is gated
// on an approved director endorsement.
func (n StageName) RequiresEndorsement() bool {
	return n == StageAnteproyecto || n == StageInformeFinal
}

// GradedByNumber reports whether the stage is consolidated from a single
// numeric grade instead of jury verdicts.
func (n StageName) GradedByNumber() bool {
	return n == StageSustentacion
}

// SystemState is the workflow position of a stage.
type SystemState string

const (
	SystemBorrador         SystemState = "BORRADOR"
	SystemRadicada         SystemState = "RADICADA"
	SystemEnRevision       SystemState = "EN_REVISION"
	SystemConObservaciones SystemState = "CON_OBSERVACIONES"
	SystemCerrada          SystemState = "CERRADA"
)

var validSystemStates = map[SystemState]bool{
	SystemBorrador:         true,
	SystemRadicada:         true,
	SystemEnRevision:       true,
	SystemConObservaciones: true,
	SystemCerrada:          true,
}

// IsValid returns true if the state is a known system state.
func (s SystemState) IsValid() bool {
	return validSystemStates[s]
}

// String returns the string representation of the system state.
func (s SystemState) String() string {
	return string(s)
}

// OfficialState is the formally recorded approval outcome of a stage,
// distinct from its workflow (system) state.
type OfficialState string

const (
	OfficialPendiente                 OfficialState = "PENDIENTE"
	OfficialAprobada                  OfficialState = "APROBADA"
	OfficialAprobadaConModificaciones OfficialState = "APROBADA_CON_MODIFICACIONES"
	OfficialNoAprobada                OfficialState = "NO_APROBADA"
)

var validOfficialStates = map[OfficialState]bool{
	OfficialPendiente:                 true,
	OfficialAprobada:                  true,
	OfficialAprobadaConModificaciones: true,
	OfficialNoAprobada:                true,
}

// IsValid returns true if the state is a known official state.
func (s OfficialState) IsValid() bool {
	return validOfficialStates[s]
}

// String returns the string representation of the official state.
func (s OfficialState) String() string {
	return string(s)
}

// OfficialResult is a single evaluator's verdict on a submission.
type OfficialResult string

const (
	ResultAprobado                  OfficialResult = "APROBADO"
	ResultAplazadoPorModificaciones OfficialResult = "APLAZADO_POR_MODIFICACIONES"
	ResultNoAprobado                OfficialResult = "NO_APROBADO"
)

var validOfficialResults = map[OfficialResult]bool{
	ResultAprobado:                  true,
	ResultAplazadoPorModificaciones: true,
	ResultNoAprobado:                true,
}

// IsValid returns true if the result is a known verdict.
func (r OfficialResult) IsValid() bool {
	return validOfficialResults[r]
}

// String returns the string representation of the result.
func (r OfficialResult) String() string {
	return string(r)
}

// GradeLabel is the distinction tier derived from a defense grade.
type GradeLabel string

const (
	LabelReprobada GradeLabel = "REPROBADA"
	LabelAprobada  GradeLabel = "APROBADA"
	LabelMeritoria GradeLabel = "MERITORIA"
	LabelLaureada  GradeLabel = "LAUREADA"
)

// String returns the string representation of the label.
func (l GradeLabel) String() string {
	return string(l)
}

// Audit event types appended by the orchestrator and lifecycle services.
const (
	EventProjectCreated      = "PROYECTO_CREADO"
	EventSubmissionCreated   = "ENTREGA_RADICADA"
	EventEndorsementRecorded = "AVAL_REGISTRADO"
	EventJuryAssigned        = "JURADOS_ASIGNADOS"
	EventEvaluationRecorded  = "EVALUACION_REGISTRADA"
	EventDefenseScheduled    = "SUSTENTACION_PROGRAMADA"
	EventGradeRecorded       = "NOTA_REGISTRADA"
	EventStageConsolidated   = "ETAPA_CONSOLIDADA"
	EventFinalDelivery       = "ENTREGA_FINAL_REGISTRADA"
	EventStatusOverride      = "ESTADO_GLOBAL_MODIFICADO"
)
