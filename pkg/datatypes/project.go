// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package datatypes

import "time"

// Project groups conversations, memories, and workspace state under one
// filesystem root.
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name" validate:"required"`
	Description string    `json:"description,omitempty"`
	Color       string    `json:"color,omitempty"`
	RootPath    string    `json:"root_path,omitempty"`
	CreatedAt   time.Time `json:"created_at"`

	// Derived stats, computed server-side. Read-only on the client.
	ConversationCount int `json:"conversation_count"`
	TaskCount         int `json:"task_count"`
	DomainCount       int `json:"domain_count"`
}
