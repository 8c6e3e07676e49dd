package model

import (
	"github.com/lib/pq"
)

type HospitalStatus string

const (
	HospitalStatusActive    HospitalStatus = "active"
	HospitalStatusSuspended HospitalStatus = "suspended"
)

type Hospital struct {
	Base
	Code        string         `db:"code" json:"code"`
	Name        string         `db:"name" json:"name"`
	Address     string         `db:"address" json:"address,omitempty"`
	Departments pq.StringArray `db:"departments" json:"departments"`
	Services    pq.StringArray `db:"services" json:"services"`
	BedCapacity int            `db:"bed_capacity" json:"bed_capacity"`
	Status      HospitalStatus `db:"status" json:"status"`
}

type CreateHospitalRequest struct {
	Name        string   `json:"name" binding:"required"`
	Address     string   `json:"address"`
	Departments []string `json:"departments" binding:"required,min=1"`
	Services    []string `json:"services"`
	BedCapacity int      `json:"bed_capacity" binding:"gte=0"`
}

type UpdateHospitalRequest struct {
	Name        *string   `json:"name"`
	Address     *string   `json:"address"`
	Departments *[]string `json:"departments"`
	Services    *[]string `json:"services"`
	BedCapacity *int      `json:"bed_capacity"`
	Status      *HospitalStatus `json:"status"`
}
