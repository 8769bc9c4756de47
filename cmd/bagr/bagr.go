// bagr packages directories as BagIt 1.0 bags and maintains existing
// bags. See printUsage for the command surface.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/pwinckles/bagr/bagit"
	"github.com/pwinckles/bagr/util/logger"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(0)
	}

	var err error
	switch os.Args[1] {
	case "bag":
		err = runBag(os.Args[2:])
	case "rebag":
		err = runRebag(os.Args[2:])
	case "validate":
		err = runValidate(os.Args[2:])
	case "help", "-help", "--help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command '%s'\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

// multiFlag collects the values of a repeatable flag.
type multiFlag []string

func (m *multiFlag) String() string {
	return strings.Join(*m, ",")
}

func (m *multiFlag) Set(value string) error {
	*m = append(*m, value)
	return nil
}

func runBag(args []string) error {
	flags := flag.NewFlagSet("bag", flag.ExitOnError)

	source := flags.String("source", "", "Directory to package (required)")
	destination := flags.String("destination", "", "Where to create the bag; defaults to the source directory")
	var algorithmNames multiFlag
	flags.Var(&algorithmNames, "digest-algorithm",
		"Digest algorithm: md5, sha1, sha256, sha512, blake2b256, or blake2b512; repeatable; defaults to sha512")
	baggingDate := flags.String("bagging-date", "", "Bagging-Date to record instead of today")
	softwareAgent := flags.String("software-agent", "", "Bag-Software-Agent to record instead of the bagr default")
	bagSize := flags.String("bag-size", "", "Bag-Size tag value")
	bagGroupIdentifier := flags.String("bag-group-identifier", "", "Bag-Group-Identifier tag value")
	bagCount := flags.String("bag-count", "", "Bag-Count tag value, such as 1 of 2")
	var sourceOrganizations, organizationAddresses, contactNames, contactPhones, contactEmails multiFlag
	var externalDescriptions, externalIdentifiers, internalSenderIdentifiers, internalSenderDescriptions, profileIdentifiers multiFlag
	flags.Var(&sourceOrganizations, "source-organization", "Source-Organization tag value; repeatable")
	flags.Var(&organizationAddresses, "organization-address", "Organization-Address tag value; repeatable")
	flags.Var(&contactNames, "contact-name", "Contact-Name tag value; repeatable")
	flags.Var(&contactPhones, "contact-phone", "Contact-Phone tag value; repeatable")
	flags.Var(&contactEmails, "contact-email", "Contact-Email tag value; repeatable")
	flags.Var(&externalDescriptions, "external-description", "External-Description tag value; repeatable")
	flags.Var(&externalIdentifiers, "external-identifier", "External-Identifier tag value; repeatable")
	flags.Var(&internalSenderIdentifiers, "internal-sender-identifier", "Internal-Sender-Identifier tag value; repeatable")
	flags.Var(&internalSenderDescriptions, "internal-sender-description", "Internal-Sender-Description tag value; repeatable")
	flags.Var(&profileIdentifiers, "bagit-profile-identifier", "BagIt-Profile-Identifier tag value; repeatable")
	var customTags multiFlag
	flags.Var(&customTags, "tag", "Custom bag-info tag as LABEL:VALUE; repeatable")
	includeHidden := flags.Bool("include-hidden-files", false, "Include hidden files in the bag")
	quiet := flags.Bool("quiet", false, "Suppress log output")
	verbose := flags.Bool("verbose", false, "Log each file as it is processed")

	flags.Parse(args)
	logger.InitLogger(*quiet, *verbose)

	if *source == "" {
		return fmt.Errorf("the -source flag is required")
	}
	if *destination == "" {
		*destination = *source
	}

	algorithms, err := parseAlgorithms(algorithmNames)
	if err != nil {
		return err
	}

	info := bagit.NewBagInfo()
	repeatable := []struct {
		values multiFlag
		add    func(string) error
	}{
		{sourceOrganizations, info.AddSourceOrganization},
		{organizationAddresses, info.AddOrganizationAddress},
		{contactNames, info.AddContactName},
		{contactPhones, info.AddContactPhone},
		{contactEmails, info.AddContactEmail},
		{externalDescriptions, info.AddExternalDescription},
		{externalIdentifiers, info.AddExternalIdentifier},
		{internalSenderIdentifiers, info.AddInternalSenderIdentifier},
		{internalSenderDescriptions, info.AddInternalSenderDescription},
		{profileIdentifiers, info.AddBagItProfileIdentifier},
	}
	if *baggingDate != "" {
		if err := info.SetBaggingDate(*baggingDate); err != nil {
			return err
		}
	}
	if *softwareAgent != "" {
		if err := info.SetSoftwareAgent(*softwareAgent); err != nil {
			return err
		}
	}
	if *bagSize != "" {
		if err := info.SetBagSize(*bagSize); err != nil {
			return err
		}
	}
	if *bagGroupIdentifier != "" {
		if err := info.SetBagGroupIdentifier(*bagGroupIdentifier); err != nil {
			return err
		}
	}
	if *bagCount != "" {
		if err := info.SetBagCount(*bagCount); err != nil {
			return err
		}
	}
	for _, group := range repeatable {
		for _, value := range group.values {
			if err := group.add(value); err != nil {
				return err
			}
		}
	}
	for _, raw := range customTags {
		label, value, found := strings.Cut(raw, ":")
		if !found {
			return fmt.Errorf("invalid -tag value '%s': expected LABEL:VALUE", raw)
		}
		if err := info.AddTag(label, strings.TrimPrefix(value, " ")); err != nil {
			return err
		}
	}

	_, err = bagit.CreateBag(*source, *destination, info, algorithms, *includeHidden)
	return err
}

func runRebag(args []string) error {
	flags := flag.NewFlagSet("rebag", flag.ExitOnError)

	bagPath := flags.String("bag-path", "", "Path to the bag's base directory (required)")
	var algorithmNames multiFlag
	flags.Var(&algorithmNames, "digest-algorithm",
		"Digest algorithm to recalculate manifests with; repeatable; defaults to the bag's current algorithms")
	baggingDate := flags.String("bagging-date", "", "Bagging-Date to record instead of today")
	softwareAgent := flags.String("software-agent", "", "Bag-Software-Agent to record instead of the bagr default")
	noRecalculate := flags.Bool("no-recalculate", false, "Skip payload manifest recalculation")
	quiet := flags.Bool("quiet", false, "Suppress log output")
	verbose := flags.Bool("verbose", false, "Log each file as it is processed")

	flags.Parse(args)
	logger.InitLogger(*quiet, *verbose)

	if *bagPath == "" {
		return fmt.Errorf("the -bag-path flag is required")
	}

	algorithms, err := parseAlgorithms(algorithmNames)
	if err != nil {
		return err
	}

	bag, err := bagit.OpenBag(*bagPath)
	if err != nil {
		return err
	}

	updater := bag.Update().
		WithAlgorithms(algorithms).
		RecalculatePayloadManifests(!*noRecalculate)
	if *baggingDate != "" {
		updater.WithBaggingDate(*baggingDate)
	}
	if *softwareAgent != "" {
		updater.WithSoftwareAgent(*softwareAgent)
	}

	_, err = updater.Finalize()
	return err
}

func runValidate(args []string) error {
	flags := flag.NewFlagSet("validate", flag.ExitOnError)

	bagPath := flags.String("bag-path", "", "Path to the bag's base directory (required)")
	integrity := flags.Bool("integrity", false, "Verify every checksum in every manifest")
	quiet := flags.Bool("quiet", false, "Suppress log output")
	verbose := flags.Bool("verbose", false, "Log each file as it is processed")

	flags.Parse(args)
	logger.InitLogger(*quiet, *verbose)

	if *bagPath == "" {
		return fmt.Errorf("the -bag-path flag is required")
	}

	result, err := bagit.ValidateBag(*bagPath, *integrity)
	if err != nil {
		return err
	}

	for _, issue := range result.Issues() {
		fmt.Printf("%s: %s\n", issue.Level, issue.Message)
	}
	fmt.Printf("Bag is %s\n", result.Verdict())
	if result.Verdict() == bagit.VerdictInvalid {
		os.Exit(2)
	}
	return nil
}

func parseAlgorithms(names []string) ([]bagit.DigestAlgorithm, error) {
	var algorithms []bagit.DigestAlgorithm
	for _, name := range names {
		algorithm, err := bagit.AlgorithmFromString(name)
		if err != nil {
			return nil, err
		}
		algorithms = append(algorithms, algorithm)
	}
	return algorithms, nil
}

// Tell the user about the program.
func printUsage() {
	message := `
bagr packages a directory as a BagIt 1.0 bag, updates existing bags,
and validates them.

Usage:

bagr bag -source=<dir> [-destination=<dir>] [options]
bagr rebag -bag-path=<dir> [options]
bagr validate -bag-path=<dir> [-integrity]

When -destination is omitted or equals -source, the bag is created in
place and the payload is moved rather than copied.

Run any subcommand with -help to see its full flag list.
`
	fmt.Println(message)
}
