// Package export renders an approved rundown into a plain-text script and
// archives it to Cloudflare R2. The archive is text only; audio and PDF
// rendering live elsewhere.
package export

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/studiocast/rundown/models"
)

// R2Client is initialized at startup when the R2 environment is configured.
var R2Client *s3.Client

// InitializeR2 initializes the Cloudflare R2 client.
func InitializeR2() error {
	accessKey := os.Getenv("AWS_ACCESS_KEY_ID")
	secretKey := os.Getenv("AWS_SECRET_ACCESS_KEY")
	if accessKey == "" || secretKey == "" {
		return fmt.Errorf("AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set")
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion("auto"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKey,
			secretKey,
			"",
		)),
	)
	if err != nil {
		return fmt.Errorf("failed to load AWS config: %w", err)
	}

	R2Client = s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.EndpointResolver = s3.EndpointResolverFromURL(os.Getenv("R2_DEV_ENDPOINT"))
		o.Region = "auto" // Cloudflare R2 expects "auto"
		o.UsePathStyle = true
	})

	return nil
}

// Archive renders the rundown and uploads it, returning the object key.
func Archive(ctx context.Context, r *models.Rundown) (string, error) {
	if R2Client == nil {
		return "", fmt.Errorf("R2 client not initialized")
	}
	bucket := os.Getenv("R2_BUCKET")
	if bucket == "" {
		return "", fmt.Errorf("R2_BUCKET environment variable is not set")
	}

	script := RenderScript(r)
	key := fmt.Sprintf("rundowns/%d/script.txt", r.ID)

	_, err := R2Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        bytes.NewReader([]byte(script)),
		ContentType: strPtr("text/plain; charset=utf-8"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload script: %w", err)
	}
	return key, nil
}

// RenderScript produces the plain-text running order: roster first, then
// every segment in timeline order with its duration, content and linked
// stories. Tag references resolve against the live roster; references to
// removed talent render as an inert placeholder.
func RenderScript(r *models.Rundown) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", r.Title)
	if r.Description != "" {
		fmt.Fprintf(&b, "%s\n", r.Description)
	}
	if r.ScheduledDate != nil {
		fmt.Fprintf(&b, "Scheduled: %s\n", r.ScheduledDate.Format("2006-01-02"))
	}
	fmt.Fprintf(&b, "Total running time: %s\n\n", formatDuration(r.TotalDuration))

	if len(r.Talent) > 0 {
		b.WriteString("TALENT\n")
		for _, t := range r.Talent {
			fmt.Fprintf(&b, "  %s — %s\n", t.Tag(), t.Role)
		}
		b.WriteString("\n")
	}

	names := make(map[uint]string, len(r.Talent))
	for _, t := range r.Talent {
		names[t.ID] = t.Name
	}

	linksBySegment := make(map[uint][]models.StoryLink)
	var unassigned []models.StoryLink
	for _, l := range r.StoryLinks {
		if l.SegmentID == nil {
			unassigned = append(unassigned, l)
		} else {
			linksBySegment[*l.SegmentID] = append(linksBySegment[*l.SegmentID], l)
		}
	}

	for _, seg := range r.Segments {
		fmt.Fprintf(&b, "%d. [%s] %s (%s)\n", seg.OrderIndex+1, strings.ToUpper(seg.Type), seg.Title, formatDuration(seg.Duration))
		if seg.Content.Script != "" {
			fmt.Fprintf(&b, "   %s\n", seg.Content.Script)
		}
		for i, q := range seg.Content.Questions {
			fmt.Fprintf(&b, "   Q%d: %s\n", i+1, q)
		}
		if seg.Content.Notes != "" {
			fmt.Fprintf(&b, "   Notes: %s\n", seg.Content.Notes)
		}
		for _, ref := range seg.Content.TagRefs {
			name, ok := names[ref.TalentID]
			if !ok {
				name = "removed"
			}
			fmt.Fprintf(&b, "   With: %s\n", ref.Render(name))
		}
		for _, l := range linksBySegment[seg.ID] {
			fmt.Fprintf(&b, "   Story: %s\n", l.Title)
		}
	}

	if len(unassigned) > 0 {
		b.WriteString("\nUNASSIGNED STORIES\n")
		for _, l := range unassigned {
			fmt.Fprintf(&b, "  %s\n", l.Title)
		}
	}

	return b.String()
}

func formatDuration(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

func strPtr(s string) *string { return &s }
