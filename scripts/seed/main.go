// Command seed provisions a demo catalog: a handful of courses with their
// evaluation sheets and pre-filled instructor rosters.
package main

import (
	"context"
	"log"
	"time"

	"github.com/noah-isme/course-eval-api/internal/models"
	"github.com/noah-isme/course-eval-api/internal/repository"
	"github.com/noah-isme/course-eval-api/pkg/config"
	"github.com/noah-isme/course-eval-api/pkg/database"
)

var sampleCourses = []models.Course{
	{Code: "PS001", Name: "ซ่อมเพาเวอร์ซัพพลาย", Category: "junior", Duration: 24, Description: "พื้นฐานการซ่อมเพาเวอร์ซัพพลายคอมพิวเตอร์"},
	{Code: "MB002", Name: "ซ่อมเมนบอร์ดโน้ตบุ๊ก", Category: "senior", Duration: 48, Description: "วิเคราะห์และซ่อมเมนบอร์ดระดับวงจร"},
	{Code: "LCD003", Name: "ซ่อมจอ LCD/LED", Category: "junior", Duration: 24, Description: "หลักการทำงานและการซ่อมจอภาพ"},
	{Code: "PRN004", Name: "ซ่อมเครื่องพิมพ์", Category: "junior", Duration: 16, Description: "บำรุงรักษาและซ่อมเครื่องพิมพ์สำนักงาน"},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer db.Close()

	courseRepo := repository.NewCourseRepository(db)
	sheetRepo := repository.NewSheetRepository(db)
	evaluationRepo := repository.NewEvaluationRepository(db)
	instructorRepo := repository.NewInstructorRepository(db)
	roster := models.DefaultRosterTemplate(cfg.Roster.Weeks)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := courseRepo.EnsureSchema(ctx); err != nil {
		log.Fatalf("failed to prepare courses schema: %v", err)
	}
	if err := sheetRepo.EnsureSchema(ctx); err != nil {
		log.Fatalf("failed to prepare sheet registry: %v", err)
	}

	for _, course := range sampleCourses {
		exists, err := courseRepo.ExistsByCode(ctx, course.Code, "")
		if err != nil {
			log.Fatalf("failed to check course %s: %v", course.Code, err)
		}
		if exists {
			log.Printf("course %s already present, skipping", course.Code)
			continue
		}

		created := course
		if err := courseRepo.Create(ctx, &created); err != nil {
			log.Fatalf("failed to create course %s: %v", course.Code, err)
		}

		evaluationSheet := repository.EvaluationSheetName(created.Code)
		instructorSheet := repository.InstructorSheetName(created.Code)
		if err := instructorRepo.EnsureRoster(ctx, instructorSheet, roster); err != nil {
			log.Fatalf("failed to create roster %s: %v", instructorSheet, err)
		}
		if err := evaluationRepo.EnsureSheet(ctx, evaluationSheet); err != nil {
			log.Fatalf("failed to create sheet %s: %v", evaluationSheet, err)
		}
		if err := sheetRepo.Register(ctx, models.SheetSet{
			CourseID:        created.ID,
			CourseCode:      created.Code,
			EvaluationSheet: evaluationSheet,
			InstructorSheet: instructorSheet,
		}); err != nil {
			log.Fatalf("failed to register sheets for %s: %v", created.Code, err)
		}

		log.Printf("seeded course %s (%s)", created.Code, created.Name)
	}
}
