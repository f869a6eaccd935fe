package domain

// StatusCounts aggregates complaints per status.
type StatusCounts struct {
	Total      int `json:"total"`
	Open       int `json:"open"`
	InProgress int `json:"inProgress"`
	Resolved   int `json:"resolved"`
	Rejected   int `json:"rejected"`
}

// DepartmentCount is the number of complaints filed under a department's categories.
type DepartmentCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Analytics is the admin dashboard snapshot.
type Analytics struct {
	Counts    StatusCounts      `json:"counts"`
	DeptStats []DepartmentCount `json:"deptStats"`
}
