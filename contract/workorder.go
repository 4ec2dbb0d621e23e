package contract

import "errors"

// Lane selects whether a backend should bias toward patching existing files
// or scaffolding a fresh workspace first.
type Lane string

const (
	LanePatchFirst     Lane = "patch_first"
	LaneWorkspaceFirst Lane = "workspace_first"
)

// WorkspaceMode controls how a backend is given access to the workspace
// root: pass_through operates directly on WorkspaceConfig.Root, staged first
// copies the filtered tree into a scratch directory.
type WorkspaceMode string

const (
	WorkspacePassThrough WorkspaceMode = "pass_through"
	WorkspaceStaged      WorkspaceMode = "staged"
)

type (
	// WorkspaceConfig describes the filesystem the backend operates on.
	WorkspaceConfig struct {
		Root    string        `json:"root"`
		Mode    WorkspaceMode `json:"mode"`
		Include []string      `json:"include,omitempty"`
		Exclude []string      `json:"exclude,omitempty"`
	}

	// Snippet is a named inline piece of context text.
	Snippet struct {
		Name    string `json:"name"`
		Content string `json:"content"`
	}

	// RunContext carries the files and inline snippets handed to the backend
	// alongside the task description.
	RunContext struct {
		Files    []string  `json:"files,omitempty"`
		Snippets []Snippet `json:"snippets,omitempty"`
	}

	// RunConfig carries model selection, vendor-specific passthrough
	// settings, environment variables, and budget caps for a run.
	RunConfig struct {
		Model        string            `json:"model,omitempty"`
		Vendor       map[string]any    `json:"vendor,omitempty"`
		Env          map[string]string `json:"env,omitempty"`
		MaxBudgetUSD *float64          `json:"max_budget_usd,omitempty"`
		MaxTurns     *int              `json:"max_turns,omitempty"`
	}

	// WorkOrder is a caller's fully specified job. It is immutable once
	// submitted to the runtime.
	WorkOrder struct {
		ID           WorkOrderID     `json:"id"`
		Task         string          `json:"task"`
		Lane         Lane            `json:"lane"`
		Workspace    WorkspaceConfig `json:"workspace"`
		Context      RunContext      `json:"context"`
		Policy       PolicyProfile   `json:"policy"`
		Requirements []Requirement   `json:"requirements,omitempty"`
		Config       RunConfig       `json:"config"`
	}

	// PolicyProfile is the tool/path/network policy attached to a WorkOrder.
	// It mirrors policy.Profile field-for-field; contract keeps its own copy
	// so this package has no dependency on the policy package, and the
	// policy package compiles PolicyProfile into matchers.
	PolicyProfile struct {
		AllowedTools       []string `json:"allowed_tools,omitempty"`
		DisallowedTools    []string `json:"disallowed_tools,omitempty"`
		DenyRead           []string `json:"deny_read,omitempty"`
		DenyWrite          []string `json:"deny_write,omitempty"`
		AllowNetwork       []string `json:"allow_network,omitempty"`
		DenyNetwork        []string `json:"deny_network,omitempty"`
		RequireApprovalFor []string `json:"require_approval_for,omitempty"`
	}
)

// WorkOrderBuilder builds a WorkOrder fluently, mirroring the teacher
// codebase's Options-struct-plus-fluent-setters idiom used throughout the
// policy and model adapter packages.
type WorkOrderBuilder struct {
	wo WorkOrder
}

// NewWorkOrder starts a builder for a WorkOrder with the given task and the
// spec-documented defaults: lane patch_first, workspace "." pass_through,
// empty context/policy/requirements/config, and a freshly generated ID.
func NewWorkOrder(task string) *WorkOrderBuilder {
	return &WorkOrderBuilder{wo: WorkOrder{
		ID:   NewWorkOrderID(),
		Task: task,
		Lane: LanePatchFirst,
		Workspace: WorkspaceConfig{
			Root: ".",
			Mode: WorkspacePassThrough,
		},
	}}
}

// WithID overrides the generated WorkOrderID.
func (b *WorkOrderBuilder) WithID(id WorkOrderID) *WorkOrderBuilder {
	b.wo.ID = id
	return b
}

// WithLane sets the lane.
func (b *WorkOrderBuilder) WithLane(lane Lane) *WorkOrderBuilder {
	b.wo.Lane = lane
	return b
}

// WithWorkspace overrides the workspace configuration.
func (b *WorkOrderBuilder) WithWorkspace(ws WorkspaceConfig) *WorkOrderBuilder {
	b.wo.Workspace = ws
	return b
}

// WithContext overrides the run context.
func (b *WorkOrderBuilder) WithContext(ctx RunContext) *WorkOrderBuilder {
	b.wo.Context = ctx
	return b
}

// WithPolicy overrides the policy profile.
func (b *WorkOrderBuilder) WithPolicy(p PolicyProfile) *WorkOrderBuilder {
	b.wo.Policy = p
	return b
}

// WithRequirement appends one capability requirement.
func (b *WorkOrderBuilder) WithRequirement(cap Capability, min MinSupport) *WorkOrderBuilder {
	b.wo.Requirements = append(b.wo.Requirements, Requirement{Capability: cap, MinSupport: min})
	return b
}

// WithConfig overrides the run config.
func (b *WorkOrderBuilder) WithConfig(cfg RunConfig) *WorkOrderBuilder {
	b.wo.Config = cfg
	return b
}

// Build validates and returns the WorkOrder.
func (b *WorkOrderBuilder) Build() (WorkOrder, error) {
	if err := ValidateWorkOrder(b.wo); err != nil {
		return WorkOrder{}, err
	}
	return b.wo, nil
}

// ValidateWorkOrder checks the same invariants WorkOrderBuilder.Build
// enforces, exported so callers that unmarshal a WorkOrder directly off the
// wire (rather than building one) can validate it before dispatch.
func ValidateWorkOrder(wo WorkOrder) error {
	if wo.Task == "" {
		return errors.New("contract: work order task must not be empty")
	}
	if !wo.ID.Valid() {
		return errors.New("contract: work order id must be a valid uuid")
	}
	switch wo.Lane {
	case LanePatchFirst, LaneWorkspaceFirst:
	default:
		return errors.New("contract: work order lane must be patch_first or workspace_first")
	}
	switch wo.Workspace.Mode {
	case WorkspacePassThrough, WorkspaceStaged:
	default:
		return errors.New("contract: workspace mode must be pass_through or staged")
	}
	return nil
}
