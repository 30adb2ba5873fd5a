package domain

// ServiceOffering is one entry in the services catalog.
type ServiceOffering struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Catalog lists the offerings visitors can request. Request service labels
// may reference an offering by id or carry free text.
var Catalog = []ServiceOffering{
	{ID: "full_stack", Title: "Full-Stack Web Applications", Description: "Production-ready web apps from design to deployment."},
	{ID: "ai_ml", Title: "AI / ML Model Development", Description: "Custom models, training pipelines and integrations."},
	{ID: "automation", Title: "Automation & Workflow Systems", Description: "Scripts and systems that remove repetitive work."},
	{ID: "data_analytics", Title: "Data Analytics & Dashboards", Description: "Reporting pipelines and interactive dashboards."},
	{ID: "academic_projects", Title: "Academic Final-Year Projects", Description: "End-to-end guidance for capstone projects."},
	{ID: "debugging", Title: "Code Debugging & Fixes", Description: "Diagnose and fix broken builds and bugs."},
	{ID: "mini_projects", Title: "Mini Projects / Assignments", Description: "Small scoped builds and assignments."},
	{ID: "resume_support", Title: "Resume & Portfolio Support", Description: "Resume reviews and portfolio polish."},
	{ID: "system_design", Title: "System Design Diagrams", Description: "Architecture and design documentation."},
	{ID: "simplification", Title: "Content Simplification", Description: "Turn dense material into clear explanations."},
}

// LookupOffering resolves a catalog id to its offering.
func LookupOffering(id string) (ServiceOffering, bool) {
	for _, offering := range Catalog {
		if offering.ID == id {
			return offering, true
		}
	}
	return ServiceOffering{}, false
}
